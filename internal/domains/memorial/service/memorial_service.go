package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	mediamodel "memorial-backend/internal/domains/media/model"
	mediarepo "memorial-backend/internal/domains/media/repository"
	"memorial-backend/internal/domains/memorial/model"
	"memorial-backend/internal/domains/memorial/repository"
	"memorial-backend/internal/workflow"
	"memorial-backend/pkg/logger"
)

// RecordClient is the slice of the record store the service needs
// beyond what the save workflow already covers.
type RecordClient interface {
	Fetch(ctx context.Context, table, keyColumn string, id interface{}) (map[string]interface{}, bool, error)
	RPC(ctx context.Context, name string, args map[string]interface{}) (interface{}, error)
}

// ObjectRemover deletes stored media objects during teardown.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
	KeyFromURL(publicURL string) (string, bool)
}

type Service struct {
	saver   *workflow.Saver
	records RecordClient
	repo    repository.Repository
	media   mediarepo.Repository
	objects ObjectRemover
}

func NewService(
	saver *workflow.Saver,
	records RecordClient,
	repo repository.Repository,
	media mediarepo.Repository,
	objects ObjectRemover,
) *Service {
	return &Service{
		saver:   saver,
		records: records,
		repo:    repo,
		media:   media,
		objects: objects,
	}
}

// SaveOutcome pairs the committed memorial with any warning left by a
// best-effort step after the commit. Warning set means the memorial is
// durable but a follow-up (the auxiliary mirror) failed.
type SaveOutcome struct {
	Memorial *model.Memorial
	Warning  error
}

// Create runs the save workflow for a brand-new memorial owned by the
// actor. Media bookkeeping rows are written best-effort after commit.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req model.SaveMemorialRequest, media []workflow.MediaSelection) (*SaveOutcome, error) {
	input := ownedInput{SaveMemorialRequest: req, ownerID: actorID}

	result, err := s.saver.Save(ctx, workflow.SaveRequest{
		Descriptor:    workflow.MemorialDescriptor(),
		ActorID:       actorID,
		Input:         input,
		Media:         media,
		RequestedTier: req.RequestedTier(),
	})
	if err != nil {
		return nil, err
	}

	s.recordUploads(ctx, actorID, result)
	s.repo.InvalidateCache(ctx, storedID(result))

	return &SaveOutcome{Memorial: model.FromRecord(result.Stored), Warning: result.Warning}, nil
}

// Update runs the save workflow against an existing memorial. The
// prior snapshot is fetched first; its presence arms the edit
// authorization gate inside the workflow.
func (s *Service) Update(ctx context.Context, actorID, memorialID uuid.UUID, req model.SaveMemorialRequest, media []workflow.MediaSelection) (*SaveOutcome, error) {
	prior, found, err := s.records.Fetch(ctx, "memorials", "id", memorialID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memorial for edit: %w", err)
	}
	if !found {
		return nil, model.ErrMemorialNotFound
	}

	result, err := s.saver.Save(ctx, workflow.SaveRequest{
		Descriptor:    workflow.MemorialDescriptor(),
		ActorID:       actorID,
		EntityID:      memorialID,
		Prior:         prior,
		Input:         req,
		Media:         media,
		RequestedTier: req.RequestedTier(),
	})
	if err != nil {
		return nil, err
	}

	s.recordUploads(ctx, actorID, result)
	s.repo.InvalidateCache(ctx, memorialID)

	return &SaveOutcome{Memorial: model.FromRecord(result.Stored), Warning: result.Warning}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Memorial, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Memorial, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListPublic(ctx context.Context, limit, offset int) ([]*model.Memorial, error) {
	return s.repo.ListPublic(ctx, limit, offset)
}

// Delete tears a memorial down: permission check via the same RPC the
// edit path uses, then the record, its media rows, and its stored
// objects. Object and row cleanup is best-effort once the record is
// gone.
func (s *Service) Delete(ctx context.Context, actorID, memorialID uuid.UUID) error {
	allowed, err := s.records.RPC(ctx, "can_edit_memorial", map[string]interface{}{
		"memorial_id": memorialID,
		"user_id":     actorID,
	})
	if err != nil {
		return fmt.Errorf("failed to check delete permission: %w", err)
	}
	if ok, _ := allowed.(bool); !ok {
		return model.ErrNotOwner
	}

	memorial, err := s.repo.GetByID(ctx, memorialID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, memorialID); err != nil {
		return err
	}

	for _, url := range []*string{memorial.ProfileImageURL, memorial.CoverImageURL} {
		if url == nil {
			continue
		}
		key, ok := s.objects.KeyFromURL(*url)
		if !ok {
			continue
		}
		if err := s.objects.Delete(ctx, key); err != nil {
			logger.Warn("failed to delete memorial media object: "+key, err)
		}
	}

	if err := s.media.DeleteByEntity(ctx, memorialID); err != nil {
		logger.Warn("failed to delete memorial media records", err)
	}

	return nil
}

// recordUploads writes one media bookkeeping row per object committed
// with the save. Failures are logged, never surfaced: the memorial
// itself is already durable.
func (s *Service) recordUploads(ctx context.Context, actorID uuid.UUID, result *workflow.Result) {
	if len(result.Uploaded) == 0 {
		return
	}

	entityID, ok := result.EntityID()
	if !ok {
		logger.Warn("stored memorial has no usable id, skipping media records", nil)
		return
	}

	for _, obj := range result.Uploaded {
		entityType := mediamodel.EntityTypeMemorialProfile
		if obj.Slot == "cover_image_url" {
			entityType = mediamodel.EntityTypeMemorialCover
		}

		err := s.media.Create(ctx, &mediamodel.Media{
			UploaderID:  actorID,
			StoragePath: obj.Key,
			EntityID:    &entityID,
			EntityType:  entityType,
			Metadata: map[string]interface{}{
				"file_name":  obj.FileName,
				"mime_type":  obj.ContentType,
				"size_bytes": obj.SizeBytes,
			},
		})
		if err != nil {
			logger.Warn("failed to record uploaded media: "+obj.Key, err)
		}
	}
}

func storedID(result *workflow.Result) uuid.UUID {
	id, _ := result.EntityID()
	return id
}

// ownedInput stamps the creating actor as owner. The owner column is
// only written on create; edits leave it untouched so ownership never
// changes through the form.
type ownedInput struct {
	model.SaveMemorialRequest
	ownerID uuid.UUID
}

func (i ownedInput) Fields() map[string]interface{} {
	fields := i.SaveMemorialRequest.Fields()
	fields["owner_id"] = i.ownerID
	return fields
}
