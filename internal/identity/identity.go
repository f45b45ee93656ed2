package identity

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the authenticated identity as exposed by the auth provider.
type Actor struct {
	ID            uuid.UUID              `json:"id"`
	Email         string                 `json:"email"`
	EmailVerified bool                   `json:"email_verified"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// Provider is the contract of the external authentication/session
// service. It is consumed read-only except for the metadata mirror that
// profile saves perform.
type Provider interface {
	Actor(ctx context.Context, id uuid.UUID) (*Actor, error)

	// UpdateMetadata merges patch into the actor's metadata map.
	// Keys present in patch overwrite existing values.
	UpdateMetadata(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error
}
