package model

import (
	"time"

	"github.com/google/uuid"

	"memorial-backend/internal/shared/record"
)

// Visibility is who may view a memorial page.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityPrivate     Visibility = "private"
	VisibilityFriendsOnly Visibility = "friends_only"
	VisibilityFamilyOnly  Visibility = "family_only"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFriendsOnly, VisibilityFamilyOnly:
		return true
	}
	return false
}

type Memorial struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	Title           string     `json:"title"`
	Bio             *string    `json:"bio"`
	BirthDate       *time.Time `json:"birth_date"`
	DeathDate       *time.Time `json:"death_date"`
	Visibility      Visibility `json:"visibility"`
	Tier            string     `json:"tier"`
	OrgID           *uuid.UUID `json:"org_id"`
	ProfileImageURL *string    `json:"profile_image_url"`
	CoverImageURL   *string    `json:"cover_image_url"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FromRecord builds a Memorial from a stored column map.
func FromRecord(rec map[string]interface{}) *Memorial {
	return &Memorial{
		ID:              record.UUID(rec, "id"),
		OwnerID:         record.UUID(rec, "owner_id"),
		Title:           record.String(rec, "title"),
		Bio:             record.StringPtr(rec, "bio"),
		BirthDate:       record.TimePtr(rec, "birth_date"),
		DeathDate:       record.TimePtr(rec, "death_date"),
		Visibility:      Visibility(record.String(rec, "visibility")),
		Tier:            record.String(rec, "tier"),
		OrgID:           record.UUIDPtr(rec, "org_id"),
		ProfileImageURL: record.StringPtr(rec, "profile_image_url"),
		CoverImageURL:   record.StringPtr(rec, "cover_image_url"),
		CreatedAt:       record.Time(rec, "created_at"),
		UpdatedAt:       record.Time(rec, "updated_at"),
	}
}
