package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"memorial-backend/internal/shared/record"
)

// Visibility is who may view a profile.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityFriendsOnly Visibility = "friends_only"
	VisibilityPrivate     Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriendsOnly, VisibilityPrivate:
		return true
	}
	return false
}

// ExternalLink is one labeled URL on a profile.
type ExternalLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Profile is keyed by the owning user's ID; there is at most one row
// per user.
type Profile struct {
	ID            uuid.UUID      `json:"id"`
	FullName      *string        `json:"full_name"`
	Username      *string        `json:"username"`
	AvatarURL     *string        `json:"avatar_url"`
	Bio           *string        `json:"bio"`
	Visibility    Visibility     `json:"visibility"`
	CoverImageURL *string        `json:"cover_image_url"`
	BirthDate     *time.Time     `json:"birth_date"`
	Location      *string        `json:"location"`
	PhoneNumber   *string        `json:"phone_number"`
	Website       *string        `json:"website"`
	ExternalLinks []ExternalLink `json:"external_links"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func FromRecord(rec map[string]interface{}) *Profile {
	return &Profile{
		ID:            record.UUID(rec, "id"),
		FullName:      record.StringPtr(rec, "full_name"),
		Username:      record.StringPtr(rec, "username"),
		AvatarURL:     record.StringPtr(rec, "avatar_url"),
		Bio:           record.StringPtr(rec, "bio"),
		Visibility:    Visibility(record.String(rec, "visibility")),
		CoverImageURL: record.StringPtr(rec, "cover_image_url"),
		BirthDate:     record.TimePtr(rec, "birth_date"),
		Location:      record.StringPtr(rec, "location"),
		PhoneNumber:   record.StringPtr(rec, "phone_number"),
		Website:       record.StringPtr(rec, "website"),
		ExternalLinks: linksFromRecord(rec["external_links"]),
		CreatedAt:     record.Time(rec, "created_at"),
		UpdatedAt:     record.Time(rec, "updated_at"),
	}
}

// linksFromRecord tolerates the shapes a jsonb column comes back in:
// raw bytes, a JSON string, or an already-decoded slice.
func linksFromRecord(raw interface{}) []ExternalLink {
	var links []ExternalLink

	switch v := raw.(type) {
	case []byte:
		_ = json.Unmarshal(v, &links)
	case string:
		_ = json.Unmarshal([]byte(v), &links)
	case []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		_ = json.Unmarshal(data, &links)
	}

	return links
}
