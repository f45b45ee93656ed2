package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrActorNotFound = errors.New("actor not found")

// postgresProvider reads and patches the auth service's user table.
// The schema itself belongs to the hosted auth provider; this is only
// its public contract expressed over the shared pool.
type postgresProvider struct {
	pool *pgxpool.Pool
}

func NewPostgresProvider(pool *pgxpool.Pool) Provider {
	return &postgresProvider{pool: pool}
}

func (p *postgresProvider) Actor(ctx context.Context, id uuid.UUID) (*Actor, error) {
	query := `
    SELECT id, email, email_verified, COALESCE(raw_user_meta_data, '{}'::jsonb)
    FROM auth_users
    WHERE id = $1
  `

	var actor Actor
	var metadata []byte
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&actor.ID,
		&actor.Email,
		&actor.EmailVerified,
		&metadata,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	if err := json.Unmarshal(metadata, &actor.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode actor metadata: %w", err)
	}

	return &actor, nil
}

// UpdateMetadata merges the patch into the stored JSONB map in a single
// statement, so concurrent patches to different keys do not clobber
// each other.
func (p *postgresProvider) UpdateMetadata(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return nil
	}

	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode metadata patch: %w", err)
	}

	query := `
    UPDATE auth_users
    SET raw_user_meta_data = COALESCE(raw_user_meta_data, '{}'::jsonb) || $2::jsonb
    WHERE id = $1
  `

	tag, err := p.pool.Exec(ctx, query, id, data)
	if err != nil {
		return fmt.Errorf("failed to update actor metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrActorNotFound
	}

	return nil
}
