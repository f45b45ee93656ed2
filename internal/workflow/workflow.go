package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"memorial-backend/pkg/logger"
)

// MediaStore is the object-storage capability the workflow needs.
type MediaStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// RecordStore is the relational-store capability the workflow needs.
// RPC results are authoritative; the workflow never re-implements an
// authorization or entitlement check client-side.
type RecordStore interface {
	Upsert(ctx context.Context, table string, record map[string]interface{}, conflictKey string) (map[string]interface{}, error)
	RPC(ctx context.Context, name string, args map[string]interface{}) (interface{}, error)
}

// Saver runs the entity save workflow: validate, gate, upload, upsert,
// reconcile. One Saver per media bucket; it is stateless across calls.
type Saver struct {
	media   MediaStore
	records RecordStore
	now     func() time.Time
}

func NewSaver(media MediaStore, records RecordStore) *Saver {
	return &Saver{
		media:   media,
		records: records,
		now:     time.Now,
	}
}

// Save executes one save attempt. Steps run strictly in order; each
// network step is a failure point that aborts the rest. Media objects
// uploaded earlier in a failed attempt are deleted before returning,
// so storage never accumulates orphans from a failed save.
func (s *Saver) Save(ctx context.Context, req SaveRequest) (*Result, error) {
	a := newAttempt(req.Descriptor.Kind)

	// Step 1: field validation. The only fully local step; nothing has
	// touched the network when this rejects.
	a.transition(StateValidating)
	if err := req.Input.Validate(); err != nil {
		a.transition(StateRejected)
		return nil, newValidationError(err)
	}

	// Step 2: authorization gate on the edit path.
	if req.Prior != nil && req.Descriptor.AuthorizeRPC != "" {
		a.transition(StateAuthorizing)
		allowed, err := s.records.RPC(ctx, req.Descriptor.AuthorizeRPC, map[string]interface{}{
			req.Descriptor.AuthorizeArg: req.EntityID,
			"user_id":                   req.ActorID,
		})
		if err != nil {
			a.transition(StateForbidden)
			return nil, &SaveError{Code: CodeAuthorizationCheck, cause: err}
		}
		if ok, _ := allowed.(bool); !ok {
			a.transition(StateForbidden)
			return nil, &SaveError{Code: CodeForbidden}
		}
	}

	// Step 3: tier gate, before any upload. The RPC is authoritative
	// for the entitlement; the rank comparison here is only the
	// advisory pre-check.
	if req.Descriptor.TierRPC != "" && req.RequestedTier != "" {
		a.transition(StateAuthorizing)
		result, err := s.records.RPC(ctx, req.Descriptor.TierRPC, map[string]interface{}{
			"user_id": req.ActorID,
		})
		if err != nil {
			a.transition(StateForbidden)
			return nil, &SaveError{Code: CodeAuthorizationCheck, cause: err}
		}
		entitled, _ := result.(string)
		if !req.RequestedTier.CoveredBy(Tier(entitled)) {
			a.transition(StateForbidden)
			return nil, &SaveError{
				Code:      CodeTierExceeded,
				Requested: req.RequestedTier,
				Entitled:  Tier(entitled),
			}
		}
	}

	// Step 4: media resolution. Slots without a pending upload pass
	// through via the input's field values.
	a.transition(StateUploading)
	var uploaded []UploadedObject
	resolved := map[string]string{}

	for _, sel := range req.Media {
		slot, ok := req.Descriptor.slot(sel.Slot)
		if !ok {
			s.compensate(ctx, uploaded)
			a.transition(StateUploadFailed)
			return nil, &SaveError{
				Code: CodeMediaUpload,
				Slot: sel.Slot,
				cause: fmt.Errorf("unknown media slot %q for kind %s",
					sel.Slot, req.Descriptor.Kind),
			}
		}

		key := objectPath(slot.PathPrefix, req.ActorID, s.now(), sel.FileName)

		if err := s.media.Upload(ctx, key, sel.Data, sel.ContentType); err != nil {
			s.compensate(ctx, uploaded)
			a.transition(StateUploadFailed)
			return nil, &SaveError{Code: CodeMediaUpload, Slot: sel.Slot, cause: err}
		}

		url, err := s.media.PublicURL(key)
		if err != nil {
			// The object itself made it up; remove it along with the
			// earlier slots of this attempt.
			s.compensate(ctx, append(uploaded, UploadedObject{Slot: sel.Slot, Key: key}))
			a.transition(StateUploadFailed)
			return nil, &SaveError{Code: CodeMediaUpload, Slot: sel.Slot, cause: err}
		}

		uploaded = append(uploaded, UploadedObject{
			Slot:        sel.Slot,
			Key:         key,
			URL:         url,
			FileName:    sel.FileName,
			ContentType: sel.ContentType,
			SizeBytes:   int64(len(sel.Data)),
		})
		resolved[slot.Name] = url
	}

	// Step 5: record upsert, one atomic statement keyed by the
	// conflict key. A fresh ID materializes the entity on create.
	record := req.Input.Fields()
	for column, url := range resolved {
		record[column] = url
	}

	entityID := req.EntityID
	if entityID == uuid.Nil {
		entityID = uuid.New()
	}
	record[req.Descriptor.ConflictKey] = entityID

	a.transition(StatePersisting)
	stored, err := s.records.Upsert(ctx, req.Descriptor.Table, record, req.Descriptor.ConflictKey)
	if err != nil {
		// The record never pointed at the new objects; they are
		// orphans now and must go.
		s.compensate(ctx, uploaded)
		a.transition(StatePersistFailed)
		return nil, &SaveError{Code: CodePersistence, cause: err}
	}

	result := &Result{Stored: stored, Uploaded: uploaded}

	// Step 6: auxiliary reconciliation. The primary record is durably
	// correct at this point, so a mirror failure is logged and
	// surfaced as a warning, never rolled back.
	if req.Reconcile != nil {
		a.transition(StateReconciling)
		if err := req.Reconcile(ctx, stored); err != nil {
			logger.Warn("auxiliary metadata reconciliation failed", err)
			result.Warning = err
		}
	}

	a.transition(StateCommitted)
	return result, nil
}

// compensate deletes the objects uploaded earlier in a failed attempt.
// Delete is idempotent, and a failed delete is only logged: there is
// nothing further to unwind, and the attempt's error must not be
// masked by cleanup noise.
func (s *Saver) compensate(ctx context.Context, uploaded []UploadedObject) {
	for _, obj := range uploaded {
		if err := s.media.Delete(ctx, obj.Key); err != nil {
			logger.Warn("compensating delete left an orphaned object: "+obj.Key, err)
		}
	}
}
