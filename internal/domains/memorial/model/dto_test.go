package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() SaveMemorialRequest {
	return SaveMemorialRequest{
		Title:      "In Memory of Ada",
		Visibility: "public",
		Tier:       "free",
	}
}

func TestSaveMemorialRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SaveMemorialRequest)
		wantErr string
	}{
		{"valid minimal", func(r *SaveMemorialRequest) {}, ""},
		{"missing title", func(r *SaveMemorialRequest) { r.Title = "" }, "title"},
		{"unknown visibility", func(r *SaveMemorialRequest) { r.Visibility = "everyone" }, "visibility"},
		{"unknown tier", func(r *SaveMemorialRequest) { r.Tier = "platinum" }, "tier"},
		{"bad birth date", func(r *SaveMemorialRequest) { r.BirthDate = "01/02/1920" }, "birth_date"},
		{"bad org id", func(r *SaveMemorialRequest) { r.OrgID = "not-a-uuid" }, "org_id"},
		{"valid full", func(r *SaveMemorialRequest) {
			r.Bio = "A life well lived."
			r.BirthDate = "1920-01-02"
			r.DeathDate = "2001-11-30"
			r.Visibility = "family_only"
			r.Tier = "premium"
			r.OrgID = "0c2580fa-c29c-4dfd-a559-a294f38c1bd5"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveMemorialRequest_Fields(t *testing.T) {
	req := validRequest()
	fields := req.Fields()

	assert.Equal(t, "In Memory of Ada", fields["title"])
	assert.Nil(t, fields["bio"])
	assert.Nil(t, fields["birth_date"])
	assert.Nil(t, fields["org_id"])
	assert.Nil(t, fields["profile_image_url"])
	assert.Equal(t, "public", fields["visibility"])
	assert.Equal(t, "free", fields["tier"])

	req.Bio = "remembered"
	req.ProfileImageURL = "https://cdn.example.com/p.jpg"
	fields = req.Fields()
	assert.Equal(t, "remembered", fields["bio"])
	assert.Equal(t, "https://cdn.example.com/p.jpg", fields["profile_image_url"])
}

func TestVisibility_Valid(t *testing.T) {
	for _, v := range []Visibility{VisibilityPublic, VisibilityPrivate, VisibilityFriendsOnly, VisibilityFamilyOnly} {
		assert.True(t, v.Valid(), string(v))
	}
	assert.False(t, Visibility("everyone").Valid())
	assert.False(t, Visibility("").Valid())
}
