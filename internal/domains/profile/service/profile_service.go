package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	mediamodel "memorial-backend/internal/domains/media/model"
	mediarepo "memorial-backend/internal/domains/media/repository"
	"memorial-backend/internal/domains/profile/model"
	"memorial-backend/internal/domains/profile/repository"
	"memorial-backend/internal/identity"
	"memorial-backend/internal/shared/record"
	"memorial-backend/internal/workflow"
	"memorial-backend/pkg/logger"
)

type RecordClient interface {
	Fetch(ctx context.Context, table, keyColumn string, id interface{}) (map[string]interface{}, bool, error)
}

// ObjectRemover deletes every stored object under a path prefix.
// Profile media is namespaced by the owner's ID, so prefix deletion is
// safe for teardown.
type ObjectRemover interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type Service struct {
	saver    *workflow.Saver
	records  RecordClient
	repo     repository.Repository
	media    mediarepo.Repository
	objects  ObjectRemover
	provider identity.Provider
}

func NewService(
	saver *workflow.Saver,
	records RecordClient,
	repo repository.Repository,
	media mediarepo.Repository,
	objects ObjectRemover,
	provider identity.Provider,
) *Service {
	return &Service{
		saver:    saver,
		records:  records,
		repo:     repo,
		media:    media,
		objects:  objects,
		provider: provider,
	}
}

// SaveOutcome pairs the committed profile with any warning left by a
// best-effort step after the commit.
type SaveOutcome struct {
	Profile *model.Profile
	Warning error
}

// Save creates or replaces the actor's profile. The conflict key is
// the actor's own ID, so the first save creates the row and later
// saves update it in place. After the row is durable, the resolved
// name and image values are mirrored into the auth provider's user
// metadata; that mirror failing leaves the save committed with a
// warning.
func (s *Service) Save(ctx context.Context, actorID uuid.UUID, req model.SaveProfileRequest, media []workflow.MediaSelection) (*SaveOutcome, error) {
	prior, found, err := s.records.Fetch(ctx, "profiles", "id", actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !found {
		prior = nil
	}

	result, err := s.saver.Save(ctx, workflow.SaveRequest{
		Descriptor: workflow.ProfileDescriptor(),
		ActorID:    actorID,
		EntityID:   actorID,
		Prior:      prior,
		Input:      req,
		Media:      media,
		Reconcile:  s.mirrorMetadata(actorID),
	})
	if err != nil {
		return nil, err
	}

	s.recordUploads(ctx, actorID, result)

	return &SaveOutcome{Profile: model.FromRecord(result.Stored), Warning: result.Warning}, nil
}

func (s *Service) Get(ctx context.Context, actorID uuid.UUID) (*model.Profile, error) {
	return s.repo.GetByID(ctx, actorID)
}

// Delete removes the actor's profile row, its media bookkeeping, and
// every stored object under the actor's media prefixes. Object and
// row cleanup is best-effort once the profile row is gone.
func (s *Service) Delete(ctx context.Context, actorID uuid.UUID) error {
	if err := s.repo.Delete(ctx, actorID); err != nil {
		return err
	}

	for _, prefix := range []string{
		fmt.Sprintf("avatars/%s/", actorID),
		fmt.Sprintf("covers/%s/", actorID),
	} {
		if err := s.objects.DeleteByPrefix(ctx, prefix); err != nil {
			logger.Warn("failed to delete profile media under "+prefix, err)
		}
	}

	if err := s.media.DeleteByUploader(ctx, actorID); err != nil {
		logger.Warn("failed to delete profile media records", err)
	}

	return nil
}

// mirrorMetadata builds the step that patches the auth provider's user
// metadata from the stored profile row.
func (s *Service) mirrorMetadata(actorID uuid.UUID) func(ctx context.Context, stored map[string]interface{}) error {
	return func(ctx context.Context, stored map[string]interface{}) error {
		patch := map[string]interface{}{}

		for _, column := range []string{"full_name", "username", "avatar_url", "cover_image_url"} {
			if v := record.StringPtr(stored, column); v != nil {
				patch[column] = *v
			}
		}

		if len(patch) == 0 {
			return nil
		}
		return s.provider.UpdateMetadata(ctx, actorID, patch)
	}
}

func (s *Service) recordUploads(ctx context.Context, actorID uuid.UUID, result *workflow.Result) {
	for _, obj := range result.Uploaded {
		entityType := mediamodel.EntityTypeProfileAvatar
		if obj.Slot == "cover_image_url" {
			entityType = mediamodel.EntityTypeProfileCover
		}

		err := s.media.Create(ctx, &mediamodel.Media{
			UploaderID:  actorID,
			StoragePath: obj.Key,
			EntityID:    &actorID,
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
