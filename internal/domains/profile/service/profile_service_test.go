package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mediamodel "memorial-backend/internal/domains/media/model"
	"memorial-backend/internal/domains/profile/model"
	"memorial-backend/internal/identity"
	"memorial-backend/internal/workflow"
)

type fakeMediaStore struct {
	uploads []string
}

func (f *fakeMediaStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeMediaStore) PublicURL(key string) (string, error) {
	return "https://cdn.test/media/" + key, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, key string) error {
	return nil
}

type fakeRecords struct {
	upserts    []map[string]interface{}
	fetchFound bool
	fetchRow   map[string]interface{}
}

func (f *fakeRecords) Upsert(ctx context.Context, table string, record map[string]interface{}, conflictKey string) (map[string]interface{}, error) {
	stored := map[string]interface{}{}
	for k, v := range record {
		stored[k] = v
	}
	stored["created_at"] = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stored["updated_at"] = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.upserts = append(f.upserts, stored)
	return stored, nil
}

func (f *fakeRecords) RPC(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	return nil, nil
}

func (f *fakeRecords) Fetch(ctx context.Context, table, keyColumn string, id interface{}) (map[string]interface{}, bool, error) {
	return f.fetchRow, f.fetchFound, nil
}

type fakeProfileRepo struct {
	profile *model.Profile
	deleted []uuid.UUID
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	if f.profile == nil {
		return nil, model.ErrProfileNotFound
	}
	return f.profile, nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMediaRepo struct {
	created          []*mediamodel.Media
	deletedUploaders []uuid.UUID
}

func (f *fakeMediaRepo) Create(ctx context.Context, m *mediamodel.Media) error {
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMediaRepo) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*mediamodel.Media, error) {
	return nil, nil
}

func (f *fakeMediaRepo) DeleteByEntity(ctx context.Context, entityID uuid.UUID) error {
	return nil
}

func (f *fakeMediaRepo) DeleteByUploader(ctx context.Context, uploaderID uuid.UUID) error {
	f.deletedUploaders = append(f.deletedUploaders, uploaderID)
	return nil
}

type fakeObjects struct {
	prefixes []string
}

func (f *fakeObjects) DeleteByPrefix(ctx context.Context, prefix string) error {
	f.prefixes = append(f.prefixes, prefix)
	return nil
}

type fakeProvider struct {
	patches []map[string]interface{}
	fail    bool
}

func (f *fakeProvider) Actor(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	return &identity.Actor{ID: id}, nil
}

func (f *fakeProvider) UpdateMetadata(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	if f.fail {
		return errors.New("auth provider unavailable")
	}
	f.patches = append(f.patches, patch)
	return nil
}

func newTestService() (*Service, *fakeMediaStore, *fakeRecords, *fakeProfileRepo, *fakeMediaRepo, *fakeObjects, *fakeProvider) {
	media := &fakeMediaStore{}
	records := &fakeRecords{}
	repo := &fakeProfileRepo{}
	mediaRepo := &fakeMediaRepo{}
	objects := &fakeObjects{}
	provider := &fakeProvider{}
	svc := NewService(workflow.NewSaver(media, records), records, repo, mediaRepo, objects, provider)
	return svc, media, records, repo, mediaRepo, objects, provider
}

func TestSave_CreatesProfileKeyedByActor(t *testing.T) {
	svc, _, records, _, _, _, _ := newTestService()
	actor := uuid.New()

	out, err := svc.Save(context.Background(), actor, model.SaveProfileRequest{
		Visibility: "public",
		FullName:   "Ada Lovelace",
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, out.Warning)

	assert.Equal(t, actor, out.Profile.ID)
	require.Len(t, records.upserts, 1)
	assert.Equal(t, actor, records.upserts[0]["id"])
}

func TestSave_MirrorsMetadata(t *testing.T) {
	svc, media, _, _, mediaRepo, _, provider := newTestService()
	actor := uuid.New()

	out, err := svc.Save(context.Background(), actor, model.SaveProfileRequest{
		Visibility: "public",
		FullName:   "Ada Lovelace",
		Username:   "ada.l",
	}, []workflow.MediaSelection{{
		Slot:        "avatar_url",
		FileName:    "me.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	}})
	require.NoError(t, err)
	assert.Nil(t, out.Warning)

	require.Len(t, provider.patches, 1)
	patch := provider.patches[0]
	assert.Equal(t, "Ada Lovelace", patch["full_name"])
	assert.Equal(t, "ada.l", patch["username"])
	require.NotNil(t, out.Profile.AvatarURL)
	assert.Equal(t, *out.Profile.AvatarURL, patch["avatar_url"])
	assert.NotContains(t, patch, "cover_image_url")

	require.Len(t, media.uploads, 1)
	require.Len(t, mediaRepo.created, 1)
	assert.Equal(t, mediamodel.EntityTypeProfileAvatar, mediaRepo.created[0].EntityType)
	assert.Equal(t, actor, mediaRepo.created[0].UploaderID)
}

func TestSave_MirrorFailureIsWarning(t *testing.T) {
	svc, _, records, _, _, _, provider := newTestService()
	provider.fail = true

	out, err := svc.Save(context.Background(), uuid.New(), model.SaveProfileRequest{
		Visibility: "public",
		FullName:   "Ada Lovelace",
	}, nil)

	require.NoError(t, err)
	require.NotNil(t, out.Warning)
	assert.Contains(t, out.Warning.Error(), "auth provider unavailable")
	assert.NotNil(t, out.Profile)
	assert.Len(t, records.upserts, 1)
}

func TestSave_EditUsesPriorSnapshot(t *testing.T) {
	svc, _, records, _, _, _, _ := newTestService()
	actor := uuid.New()
	records.fetchFound = true
	records.fetchRow = map[string]interface{}{
		"id":         actor,
		"full_name":  "Ada",
		"visibility": "private",
	}

	out, err := svc.Save(context.Background(), actor, model.SaveProfileRequest{
		Visibility: "friends_only",
		FullName:   "Ada King",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.VisibilityFriendsOnly, out.Profile.Visibility)
	require.NotNil(t, out.Profile.FullName)
	assert.Equal(t, "Ada King", *out.Profile.FullName)
}

func TestDelete_PurgesMediaByPrefix(t *testing.T) {
	svc, _, _, repo, mediaRepo, objects, _ := newTestService()
	actor := uuid.New()

	err := svc.Delete(context.Background(), actor)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{actor}, repo.deleted)
	assert.ElementsMatch(t, []string{
		fmt.Sprintf("avatars/%s/", actor),
		fmt.Sprintf("covers/%s/", actor),
	}, objects.prefixes)
	assert.Equal(t, []uuid.UUID{actor}, mediaRepo.deletedUploaders)
}
