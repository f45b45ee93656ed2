package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveGroupRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SaveGroupRequest
		wantErr string
	}{
		{"valid", SaveGroupRequest{Name: "Book Club", Privacy: "public"}, ""},
		{"missing name", SaveGroupRequest{Privacy: "public"}, "name"},
		{"name too short", SaveGroupRequest{Name: "ab", Privacy: "public"}, "name"},
		{"missing privacy", SaveGroupRequest{Name: "Book Club"}, "privacy"},
		{"unknown privacy", SaveGroupRequest{Name: "Book Club", Privacy: "hidden"}, "privacy"},
		{"valid secret", SaveGroupRequest{Name: "Close Friends", Description: "just us", Privacy: "secret"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveGroupRequest_Fields(t *testing.T) {
	req := SaveGroupRequest{Name: "Book Club", Privacy: "public"}
	fields := req.Fields()

	assert.Equal(t, "Book Club", fields["name"])
	assert.Equal(t, "public", fields["privacy"])
	assert.Nil(t, fields["description"])
	assert.Nil(t, fields["cover_image_url"])
}

func TestPrivacy_Valid(t *testing.T) {
	for _, p := range []Privacy{PrivacyPublic, PrivacyPrivate, PrivacySecret} {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, Privacy("hidden").Valid())
}
