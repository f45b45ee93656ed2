package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveProfileRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SaveProfileRequest
		wantErr string
	}{
		{"valid minimal", SaveProfileRequest{Visibility: "public"}, ""},
		{"missing visibility", SaveProfileRequest{}, "visibility"},
		{"unknown visibility", SaveProfileRequest{Visibility: "family_only"}, "visibility"},
		{"short username", SaveProfileRequest{Visibility: "public", Username: "ab"}, "username"},
		{"bad username chars", SaveProfileRequest{Visibility: "public", Username: "name with spaces"}, "username"},
		{"bad website", SaveProfileRequest{Visibility: "public", Website: "not a url"}, "website"},
		{"bad phone", SaveProfileRequest{Visibility: "public", PhoneNumber: "call me"}, "phone_number"},
		{"bad links json", SaveProfileRequest{Visibility: "public", ExternalLinks: "{broken"}, "external_links"},
		{"link without url", SaveProfileRequest{Visibility: "public", ExternalLinks: `[{"type":"github","url":""}]`}, "external_links"},
		{"valid full", SaveProfileRequest{
			FullName:      "Ada Lovelace",
			Username:      "ada.l",
			Bio:           "first programmer",
			Visibility:    "friends_only",
			BirthDate:     "1815-12-10",
			Location:      "London",
			PhoneNumber:   "+442071234567",
			Website:       "https://example.com",
			ExternalLinks: `[{"type":"wiki","url":"https://en.wikipedia.org/wiki/Ada_Lovelace"}]`,
		}, ""},
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

func TestSaveProfileRequest_Fields(t *testing.T) {
	req := SaveProfileRequest{
		Visibility:    "public",
		FullName:      "Ada",
		ExternalLinks: `[{"type":"wiki","url":"https://example.com"}]`,
	}
	fields := req.Fields()

	assert.Equal(t, "Ada", fields["full_name"])
	assert.Nil(t, fields["username"])
	assert.Equal(t, json.RawMessage(req.ExternalLinks), fields["external_links"])

	req.ExternalLinks = ""
	assert.Nil(t, req.Fields()["external_links"])
}

func TestLinksFromRecord(t *testing.T) {
	want := []ExternalLink{{Type: "wiki", URL: "https://example.com"}}

	assert.Equal(t, want, linksFromRecord([]byte(`[{"type":"wiki","url":"https://example.com"}]`)))
	assert.Equal(t, want, linksFromRecord(`[{"type":"wiki","url":"https://example.com"}]`))
	assert.Equal(t, want, linksFromRecord([]interface{}{
		map[string]interface{}{"type": "wiki", "url": "https://example.com"},
	}))
	assert.Nil(t, linksFromRecord(nil))
	assert.Nil(t, linksFromRecord(42))
}
