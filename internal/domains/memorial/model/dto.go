package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"memorial-backend/internal/workflow"
)

// SaveMemorialRequest is the full form snapshot sent on create and on
// edit. Image URL fields carry the existing values; pending uploads
// arrive as multipart files and override them after storage resolves.
type SaveMemorialRequest struct {
	Title           string `form:"title" json:"title"`
	Bio             string `form:"bio" json:"bio"`
	BirthDate       string `form:"birth_date" json:"birth_date"`
	DeathDate       string `form:"death_date" json:"death_date"`
	Visibility      string `form:"visibility" json:"visibility"`
	Tier            string `form:"tier" json:"tier"`
	OrgID           string `form:"org_id" json:"org_id"`
	ProfileImageURL string `form:"profile_image_url" json:"profile_image_url"`
	CoverImageURL   string `form:"cover_image_url" json:"cover_image_url"`
}

func (r SaveMemorialRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 200),
		),
		validation.Field(&r.Bio, validation.Length(0, 5000)),
		validation.Field(&r.BirthDate,
			validation.When(r.BirthDate != "", validation.Date("2006-01-02").Error("birth_date must be YYYY-MM-DD")),
		),
		validation.Field(&r.DeathDate,
			validation.When(r.DeathDate != "", validation.Date("2006-01-02").Error("death_date must be YYYY-MM-DD")),
		),
		validation.Field(&r.Visibility,
			validation.Required.Error("visibility is required"),
			validation.In("public", "private", "friends_only", "family_only").
				Error("visibility must be public, private, friends_only or family_only"),
		),
		validation.Field(&r.Tier,
			validation.Required.Error("tier is required"),
			validation.In("free", "basic", "premium").Error("tier must be free, basic or premium"),
		),
		validation.Field(&r.OrgID,
			validation.When(r.OrgID != "", is.UUID.Error("org_id must be a UUID")),
		),
	)
}

// Fields returns the column values to persist. Empty optionals become
// NULL; image columns carry the pass-through URLs until the workflow
// overrides slots that had a pending upload.
func (r SaveMemorialRequest) Fields() map[string]interface{} {
	return map[string]interface{}{
		"title":             r.Title,
		"bio":               nullable(r.Bio),
		"birth_date":        nullable(r.BirthDate),
		"death_date":        nullable(r.DeathDate),
		"visibility":        r.Visibility,
		"tier":              r.Tier,
		"org_id":            nullable(r.OrgID),
		"profile_image_url": nullable(r.ProfileImageURL),
		"cover_image_url":   nullable(r.CoverImageURL),
	}
}

// RequestedTier exposes the tier selection for the entitlement gate.
func (r SaveMemorialRequest) RequestedTier() workflow.Tier {
	return workflow.Tier(r.Tier)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
