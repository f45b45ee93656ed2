package model

import (
	"encoding/json"
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// SaveProfileRequest is the profile form snapshot. external_links
// arrives as a JSON array string because the form is multipart.
type SaveProfileRequest struct {
	FullName      string `form:"full_name" json:"full_name"`
	Username      string `form:"username" json:"username"`
	Bio           string `form:"bio" json:"bio"`
	Visibility    string `form:"visibility" json:"visibility"`
	BirthDate     string `form:"birth_date" json:"birth_date"`
	Location      string `form:"location" json:"location"`
	PhoneNumber   string `form:"phone_number" json:"phone_number"`
	Website       string `form:"website" json:"website"`
	ExternalLinks string `form:"external_links" json:"external_links"`
	AvatarURL     string `form:"avatar_url" json:"avatar_url"`
	CoverImageURL string `form:"cover_image_url" json:"cover_image_url"`
}

func (r SaveProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Length(0, 100)),
		validation.Field(&r.Username,
			validation.When(r.Username != "",
				validation.Length(3, 30).Error("username must be 3-30 characters"),
				validation.Match(usernamePattern).Error("username may only contain letters, numbers, dots and underscores"),
			),
		),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
		validation.Field(&r.Visibility,
			validation.Required.Error("visibility is required"),
			validation.In("public", "friends_only", "private").
				Error("visibility must be public, friends_only or private"),
		),
		validation.Field(&r.BirthDate,
			validation.When(r.BirthDate != "", validation.Date("2006-01-02").Error("birth_date must be YYYY-MM-DD")),
		),
		validation.Field(&r.Location, validation.Length(0, 200)),
		validation.Field(&r.PhoneNumber,
			validation.When(r.PhoneNumber != "", is.E164.Error("phone_number must be in international format")),
		),
		validation.Field(&r.Website,
			validation.When(r.Website != "", is.URL.Error("website must be a valid URL")),
		),
		validation.Field(&r.ExternalLinks, validation.By(validateLinks)),
	)
}

func validateLinks(value interface{}) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	var links []ExternalLink
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return errors.New("external_links must be a JSON array of {type, url} objects")
	}
	for _, link := range links {
		if link.URL == "" {
			return errors.New("every external link needs a url")
		}
	}
	return nil
}

func (r SaveProfileRequest) Fields() map[string]interface{} {
	return map[string]interface{}{
		"full_name":       nullable(r.FullName),
		"username":        nullable(r.Username),
		"bio":             nullable(r.Bio),
		"visibility":      r.Visibility,
		"birth_date":      nullable(r.BirthDate),
		"location":        nullable(r.Location),
		"phone_number":    nullable(r.PhoneNumber),
		"website":         nullable(r.Website),
		"external_links":  r.linksValue(),
		"avatar_url":      nullable(r.AvatarURL),
		"cover_image_url": nullable(r.CoverImageURL),
	}
}

func (r SaveProfileRequest) linksValue() interface{} {
	if r.ExternalLinks == "" {
		return nil
	}
	return json.RawMessage(r.ExternalLinks)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
