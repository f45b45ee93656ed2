package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SaveGroupRequest is the group form snapshot, sent on create and on
// edit alike.
type SaveGroupRequest struct {
	Name          string `form:"name" json:"name"`
	Description   string `form:"description" json:"description"`
	Privacy       string `form:"privacy" json:"privacy"`
	CoverImageURL string `form:"cover_image_url" json:"cover_image_url"`
}

func (r SaveGroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(3, 100).Error("group name must be at least 3 characters"),
		),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Privacy,
			validation.Required.Error("privacy is required"),
			validation.In("public", "private", "secret").
				Error("privacy must be public, private or secret"),
		),
	)
}

func (r SaveGroupRequest) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":            r.Name,
		"description":     nullable(r.Description),
		"privacy":         r.Privacy,
		"cover_image_url": nullable(r.CoverImageURL),
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
