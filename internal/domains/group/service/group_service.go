package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"memorial-backend/internal/domains/group/model"
	"memorial-backend/internal/domains/group/repository"
	mediamodel "memorial-backend/internal/domains/media/model"
	mediarepo "memorial-backend/internal/domains/media/repository"
	"memorial-backend/internal/workflow"
	"memorial-backend/pkg/logger"
)

type RecordClient interface {
	Fetch(ctx context.Context, table, keyColumn string, id interface{}) (map[string]interface{}, bool, error)
}

type Service struct {
	saver   *workflow.Saver
	records RecordClient
	repo    repository.Repository
	media   mediarepo.Repository
}

func NewService(
	saver *workflow.Saver,
	records RecordClient,
	repo repository.Repository,
	media mediarepo.Repository,
) *Service {
	return &Service{
		saver:   saver,
		records: records,
		repo:    repo,
		media:   media,
	}
}

// Create saves a new group and enrolls the creator as its admin. The
// membership bootstrap must succeed for the group to be usable, so its
// failure is an error, unlike the media bookkeeping.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req model.SaveGroupRequest, media []workflow.MediaSelection) (*model.Group, error) {
	input := creatorInput{SaveGroupRequest: req, creatorID: actorID}

	result, err := s.saver.Save(ctx, workflow.SaveRequest{
		Descriptor: workflow.GroupDescriptor(),
		ActorID:    actorID,
		Input:      input,
		Media:      media,
	})
	if err != nil {
		return nil, err
	}

	group := model.FromRecord(result.Stored)

	if err := s.repo.InsertMember(ctx, group.ID, actorID, model.RoleAdmin); err != nil {
		return nil, fmt.Errorf("group created but admin enrollment failed: %w", err)
	}

	s.recordUploads(ctx, actorID, group.ID, result)
	s.repo.InvalidateCache(ctx, group.ID)

	return group, nil
}

// Update saves an existing group. Groups have no server-side edit RPC;
// the admin membership check here is the authorization gate.
func (s *Service) Update(ctx context.Context, actorID, groupID uuid.UUID, req model.SaveGroupRequest, media []workflow.MediaSelection) (*model.Group, error) {
	isAdmin, err := s.repo.IsAdmin(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, model.ErrNotAdmin
	}

	prior, found, err := s.records.Fetch(ctx, "community_groups", "id", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group for edit: %w", err)
	}
	if !found {
		return nil, model.ErrGroupNotFound
	}

	result, err := s.saver.Save(ctx, workflow.SaveRequest{
		Descriptor: workflow.GroupDescriptor(),
		ActorID:    actorID,
		EntityID:   groupID,
		Prior:      prior,
		Input:      req,
		Media:      media,
	})
	if err != nil {
		return nil, err
	}

	s.recordUploads(ctx, actorID, groupID, result)
	s.repo.InvalidateCache(ctx, groupID)

	return model.FromRecord(result.Stored), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*model.Group, error) {
	return s.repo.ListVisible(ctx, limit, offset)
}

func (s *Service) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*model.Member, error) {
	return s.repo.ListMembers(ctx, groupID)
}

func (s *Service) recordUploads(ctx context.Context, actorID, groupID uuid.UUID, result *workflow.Result) {
	for _, obj := range result.Uploaded {
		err := s.media.Create(ctx, &mediamodel.Media{
			UploaderID:  actorID,
			StoragePath: obj.Key,
			EntityID:    &groupID,
			EntityType:  mediamodel.EntityTypeGroupCover,
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

// creatorInput stamps the creator column on first save only.
type creatorInput struct {
	model.SaveGroupRequest
	creatorID uuid.UUID
}

func (i creatorInput) Fields() map[string]interface{} {
	fields := i.SaveGroupRequest.Fields()
	fields["created_by"] = i.creatorID
	return fields
}
