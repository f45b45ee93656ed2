package workflow

import (
	"context"

	"github.com/google/uuid"
)

// FormInput is one immutable snapshot of validated-to-be form state.
// Fields returns the column values to persist, including pass-through
// values for media slots with no pending upload (existing URL or nil).
type FormInput interface {
	Validate() error
	Fields() map[string]interface{}
}

// MediaSelection is a pending upload for one media slot.
type MediaSelection struct {
	Slot        string
	FileName    string
	ContentType string
	Data        []byte
}

// SaveRequest carries everything one save attempt needs. The actor is
// passed explicitly; the workflow never consults ambient state.
type SaveRequest struct {
	Descriptor Descriptor
	ActorID    uuid.UUID

	// EntityID is uuid.Nil when creating; the workflow generates a
	// fresh ID in that case.
	EntityID uuid.UUID

	// Prior is the pre-save record snapshot on the edit path, nil when
	// creating. Its presence is what arms the authorization gate.
	Prior map[string]interface{}

	Input FormInput
	Media []MediaSelection

	// RequestedTier is set for kinds with a tier gate; empty otherwise.
	RequestedTier Tier

	// Reconcile, when set, mirrors resolved values into auxiliary
	// actor-level state after the primary record is durable. Its
	// failure is a warning, never a rollback.
	Reconcile func(ctx context.Context, stored map[string]interface{}) error
}

// UploadedObject describes one object stored during a save attempt.
type UploadedObject struct {
	Slot        string
	Key         string
	URL         string
	FileName    string
	ContentType string
	SizeBytes   int64
}

// Result is the outcome of a committed save.
type Result struct {
	// Stored is the record as returned by the store, so callers see
	// server-computed fields (timestamps, generated ID).
	Stored map[string]interface{}

	// Uploaded lists the media objects committed with this save, for
	// media-record bookkeeping by the caller.
	Uploaded []UploadedObject

	// Warning is a non-fatal auxiliary reconciliation failure.
	Warning error
}

// EntityID extracts the stored entity's ID.
func (r *Result) EntityID() (uuid.UUID, bool) {
	raw, ok := r.Stored["id"]
	if !ok {
		return uuid.Nil, false
	}
	switch v := raw.(type) {
	case uuid.UUID:
		return v, true
	case [16]byte:
		return uuid.UUID(v), true
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	default:
		return uuid.Nil, false
	}
}
