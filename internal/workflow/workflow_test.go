package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMediaStore keeps uploaded objects in memory and can be told to
// fail a specific slot's upload or every URL resolution.
type fakeMediaStore struct {
	objects       map[string][]byte
	uploads       int
	deletes       int
	failUploadKey string // substring of the key that should fail
	failPublicURL bool
	failDelete    bool
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{objects: map[string][]byte{}}
}

func (f *fakeMediaStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.uploads++
	if f.failUploadKey != "" && strings.Contains(key, f.failUploadKey) {
		return errors.New("storage write refused")
	}
	f.objects[key] = data
	return nil
}

func (f *fakeMediaStore) PublicURL(key string) (string, error) {
	if f.failPublicURL {
		return "", errors.New("bucket is not public")
	}
	return "https://cdn.test/" + key, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, key string) error {
	f.deletes++
	if f.failDelete {
		return errors.New("delete refused")
	}
	delete(f.objects, key) // idempotent: missing keys are fine
	return nil
}

// fakeRecordStore records upserts and answers RPCs from a canned map.
type fakeRecordStore struct {
	upserts    int
	rpcCalls   []string
	rows       map[string]map[string]interface{} // table -> last stored record
	failUpsert bool
	rpcResults map[string]interface{}
	rpcErr     error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		rows:       map[string]map[string]interface{}{},
		rpcResults: map[string]interface{}{},
	}
}

func (f *fakeRecordStore) Upsert(_ context.Context, table string, record map[string]interface{}, conflictKey string) (map[string]interface{}, error) {
	f.upserts++
	if f.failUpsert {
		return nil, errors.New("unique constraint violation")
	}

	stored := make(map[string]interface{}, len(record)+1)
	for k, v := range record {
		stored[k] = v
	}
	stored["updated_at"] = "2026-01-01T00:00:00Z" // server-computed field
	f.rows[table] = stored
	return stored, nil
}

func (f *fakeRecordStore) RPC(_ context.Context, name string, _ map[string]interface{}) (interface{}, error) {
	f.rpcCalls = append(f.rpcCalls, name)
	if f.rpcErr != nil {
		return nil, f.rpcErr
	}
	return f.rpcResults[name], nil
}

// testInput is a minimal FormInput with explicit field values.
type testInput struct {
	fields  map[string]interface{}
	invalid validation.Errors
}

func (i testInput) Validate() error {
	if i.invalid != nil {
		return i.invalid
	}
	return nil
}

func (i testInput) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(i.fields))
	for k, v := range i.fields {
		out[k] = v
	}
	return out
}

func groupInput(name string) testInput {
	return testInput{fields: map[string]interface{}{
		"name":            name,
		"description":     nil,
		"privacy":         "public",
		"cover_image_url": nil,
	}}
}

func TestSave_CreateWithoutMedia(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	// Example A: a public group with no cover image.
	result, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: GroupDescriptor(),
		ActorID:    uuid.New(),
		Input:      groupInput("Book Club"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Book Club", result.Stored["name"])
	assert.Equal(t, "public", result.Stored["privacy"])
	assert.Nil(t, result.Stored["cover_image_url"])
	assert.NotNil(t, result.Stored["id"], "create must materialize a fresh id")
	assert.Equal(t, "2026-01-01T00:00:00Z", result.Stored["updated_at"],
		"result must be the stored record, not the local input")

	assert.Zero(t, media.uploads)
	assert.Empty(t, result.Uploaded)
}

func TestSave_ValidationRejectsBeforeAnyCall(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	input := testInput{invalid: validation.Errors{
		"name":    errors.New("cannot be blank"),
		"privacy": errors.New("must be a valid value"),
	}}

	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: GroupDescriptor(),
		ActorID:    uuid.New(),
		Input:      input,
		Media: []MediaSelection{
			{Slot: "cover_image_url", FileName: "c.jpg", Data: []byte("x")},
		},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, se.Code)
	assert.Equal(t, "cannot be blank", se.FieldErrors["name"])
	assert.Equal(t, "must be a valid value", se.FieldErrors["privacy"])

	assert.Zero(t, media.uploads, "validation must reject before any network call")
	assert.Zero(t, records.upserts)
	assert.Empty(t, records.rpcCalls)
}

func TestSave_EditForbidden(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	records.rpcResults["can_edit_memorial"] = false
	saver := NewSaver(media, records)

	// Example B: authorization RPC returns false on the edit path.
	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: MemorialDescriptor(),
		ActorID:    uuid.New(),
		EntityID:   uuid.New(),
		Prior:      map[string]interface{}{"title": "old"},
		Input:      testInput{fields: map[string]interface{}{"title": "new"}},
		Media: []MediaSelection{
			{Slot: "profile_image_url", FileName: "p.jpg", Data: []byte("x")},
		},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodeForbidden, se.Code)

	assert.Equal(t, []string{"can_edit_memorial"}, records.rpcCalls)
	assert.Zero(t, media.uploads)
	assert.Zero(t, records.upserts)
}

func TestSave_AuthorizationCheckFailure(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	records.rpcErr = errors.New("rpc timeout")
	saver := NewSaver(media, records)

	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: MemorialDescriptor(),
		ActorID:    uuid.New(),
		EntityID:   uuid.New(),
		Prior:      map[string]interface{}{},
		Input:      testInput{fields: map[string]interface{}{"title": "t"}},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodeAuthorizationCheck, se.Code)
	assert.Zero(t, media.uploads)
	assert.Zero(t, records.upserts)
}

func TestSave_TierExceededBeforeUpload(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	records.rpcResults["get_user_tier"] = "free"
	saver := NewSaver(media, records)

	// Example C: requesting premium on a free entitlement.
	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor:    MemorialDescriptor(),
		ActorID:       uuid.New(),
		Input:         testInput{fields: map[string]interface{}{"title": "t", "tier": "premium"}},
		RequestedTier: TierPremium,
		Media: []MediaSelection{
			{Slot: "profile_image_url", FileName: "p.jpg", Data: []byte("x")},
		},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodeTierExceeded, se.Code)
	assert.Equal(t, TierPremium, se.Requested)
	assert.Equal(t, TierFree, se.Entitled)

	assert.Zero(t, media.uploads, "tier gate must run before any upload")
	assert.Zero(t, records.upserts)
}

func TestSave_TierCoveredProceeds(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	records.rpcResults["get_user_tier"] = "premium"
	saver := NewSaver(media, records)

	result, err := saver.Save(context.Background(), SaveRequest{
		Descriptor:    MemorialDescriptor(),
		ActorID:       uuid.New(),
		Input:         testInput{fields: map[string]interface{}{"title": "t", "tier": "basic"}},
		RequestedTier: TierBasic,
	})
	require.NoError(t, err)
	assert.Equal(t, "basic", result.Stored["tier"])
}

func TestSave_UploadFailureCompensatesEarlierSlots(t *testing.T) {
	media := newFakeMediaStore()
	media.failUploadKey = "covers/"
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: ProfileDescriptor(),
		ActorID:    uuid.New(),
		Input:      testInput{fields: map[string]interface{}{"full_name": "A"}},
		Media: []MediaSelection{
			{Slot: "avatar_url", FileName: "a.png", Data: []byte("avatar")},
			{Slot: "cover_image_url", FileName: "c.png", Data: []byte("cover")},
		},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodeMediaUpload, se.Code)
	assert.Equal(t, "cover_image_url", se.Slot)

	assert.Empty(t, media.objects, "no object from the failed attempt may remain")
	assert.Zero(t, records.upserts, "no partial record write on upload failure")
}

func TestSave_PublicURLFailureCompensatesCurrentSlot(t *testing.T) {
	media := newFakeMediaStore()
	media.failPublicURL = true
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: ProfileDescriptor(),
		ActorID:    uuid.New(),
		Input:      testInput{fields: map[string]interface{}{"full_name": "A"}},
		Media: []MediaSelection{
			{Slot: "avatar_url", FileName: "a.png", Data: []byte("avatar")},
		},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodeMediaUpload, se.Code)

	assert.Empty(t, media.objects,
		"the uploaded object must be deleted when its URL cannot be resolved")
	assert.Zero(t, records.upserts)
}

func TestSave_PersistenceFailureDeletesUploadedMedia(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	records.failUpsert = true
	saver := NewSaver(media, records)

	// Example D: the image goes up, the upsert fails, the image comes
	// back down.
	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: ProfileDescriptor(),
		ActorID:    uuid.New(),
		Input:      testInput{fields: map[string]interface{}{"full_name": "A"}},
		Media: []MediaSelection{
			{Slot: "avatar_url", FileName: "a.png", Data: []byte("avatar")},
		},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodePersistence, se.Code)

	assert.Equal(t, 1, media.uploads)
	assert.Empty(t, media.objects, "no orphaned media after a failed upsert")
}

func TestSave_FailedCompensationDoesNotMaskError(t *testing.T) {
	media := newFakeMediaStore()
	media.failDelete = true
	records := newFakeRecordStore()
	records.failUpsert = true
	saver := NewSaver(media, records)

	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: ProfileDescriptor(),
		ActorID:    uuid.New(),
		Input:      testInput{fields: map[string]interface{}{"full_name": "A"}},
		Media: []MediaSelection{
			{Slot: "avatar_url", FileName: "a.png", Data: []byte("avatar")},
		},
	})

	// Cleanup failing leaves an orphan, but the caller must still see
	// the upsert failure, not the delete failure.
	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodePersistence, se.Code)
	assert.Contains(t, se.Error(), "unique constraint violation")

	assert.Equal(t, 1, media.deletes, "the compensating delete must still be attempted")
	assert.Len(t, media.objects, 1, "the orphan stays when its delete fails")
}

func TestSave_FailedCompensationKeepsUploadError(t *testing.T) {
	media := newFakeMediaStore()
	media.failUploadKey = "covers/"
	media.failDelete = true
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: ProfileDescriptor(),
		ActorID:    uuid.New(),
		Input:      testInput{fields: map[string]interface{}{"full_name": "A"}},
		Media: []MediaSelection{
			{Slot: "avatar_url", FileName: "a.png", Data: []byte("avatar")},
			{Slot: "cover_image_url", FileName: "c.png", Data: []byte("cover")},
		},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodeMediaUpload, se.Code)
	assert.Equal(t, "cover_image_url", se.Slot)
	assert.Zero(t, records.upserts)
}

func TestSave_UnknownSlotRejected(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: GroupDescriptor(),
		ActorID:    uuid.New(),
		Input:      groupInput("g"),
		Media: []MediaSelection{
			{Slot: "banner_url", FileName: "b.png", Data: []byte("x")},
		},
	})

	se, ok := AsSaveError(err)
	require.True(t, ok)
	assert.Equal(t, CodeMediaUpload, se.Code)
	assert.Equal(t, "banner_url", se.Slot)
	assert.Zero(t, records.upserts)
}

func TestSave_RepeatSaveIsIdempotent(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	entityID := uuid.New()
	actorID := uuid.New()
	req := SaveRequest{
		Descriptor: GroupDescriptor(),
		ActorID:    actorID,
		EntityID:   entityID,
		Prior:      map[string]interface{}{"name": "Book Club"},
		Input:      groupInput("Book Club"),
	}

	first, err := saver.Save(context.Background(), req)
	require.NoError(t, err)
	second, err := saver.Save(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Stored["id"], second.Stored["id"])
	assert.Equal(t, first.Stored["name"], second.Stored["name"])
	assert.Equal(t, first.Stored["privacy"], second.Stored["privacy"])
}

func TestSave_MediaResolvedIntoRecord(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	actorID := uuid.New()
	result, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: ProfileDescriptor(),
		ActorID:    actorID,
		EntityID:   actorID, // profile conflict key is the actor id
		Input: testInput{fields: map[string]interface{}{
			"full_name":       "Ada",
			"avatar_url":      nil,
			"cover_image_url": "https://cdn.test/covers/existing.jpg", // pass-through
		}},
		Media: []MediaSelection{
			{Slot: "avatar_url", FileName: "Me.PNG", ContentType: "image/png", Data: []byte("avatar")},
		},
	})
	require.NoError(t, err)

	avatarURL, _ := result.Stored["avatar_url"].(string)
	assert.Contains(t, avatarURL, "https://cdn.test/avatars/"+actorID.String()+"/")
	assert.Contains(t, avatarURL, ".png", "extension must be normalized to lower case")
	assert.Equal(t, "https://cdn.test/covers/existing.jpg", result.Stored["cover_image_url"],
		"slot without a pending upload passes through unchanged")

	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, "avatar_url", result.Uploaded[0].Slot)
	assert.Equal(t, int64(6), result.Uploaded[0].SizeBytes)
	assert.Equal(t, actorID, first16(result.Stored["id"]))
}

func first16(v interface{}) uuid.UUID {
	id, _ := (&Result{Stored: map[string]interface{}{"id": v}}).EntityID()
	return id
}

func TestSave_ReconcileFailureIsWarningOnly(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	mirrorErr := errors.New("metadata service unavailable")
	result, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: ProfileDescriptor(),
		ActorID:    uuid.New(),
		Input:      testInput{fields: map[string]interface{}{"full_name": "Ada"}},
		Reconcile: func(context.Context, map[string]interface{}) error {
			return mirrorErr
		},
	})

	require.NoError(t, err, "a mirror failure must not fail the save")
	assert.Equal(t, mirrorErr, result.Warning)
	assert.Equal(t, 1, records.upserts)
	assert.Empty(t, media.objects, "nothing was uploaded, nothing to keep")
}

func TestSave_ReconcileSeesStoredRecord(t *testing.T) {
	media := newFakeMediaStore()
	records := newFakeRecordStore()
	saver := NewSaver(media, records)

	var seen map[string]interface{}
	_, err := saver.Save(context.Background(), SaveRequest{
		Descriptor: ProfileDescriptor(),
		ActorID:    uuid.New(),
		Input:      testInput{fields: map[string]interface{}{"full_name": "Ada"}},
		Reconcile: func(_ context.Context, stored map[string]interface{}) error {
			seen = stored
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01T00:00:00Z", seen["updated_at"],
		"reconciliation must see the server-returned record")
}
