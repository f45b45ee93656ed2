package model

import (
	"time"

	"github.com/google/uuid"

	"memorial-backend/internal/shared/record"
)

// Privacy is who can find and join a community group.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
	PrivacySecret  Privacy = "secret"
)

func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacySecret:
		return true
	}
	return false
}

const RoleAdmin = "admin"

type Group struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	CreatedBy     uuid.UUID `json:"created_by"`
	Privacy       Privacy   `json:"privacy"`
	CoverImageURL *string   `json:"cover_image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Member struct {
	ID       uuid.UUID `json:"id"`
	GroupID  uuid.UUID `json:"group_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func FromRecord(rec map[string]interface{}) *Group {
	return &Group{
		ID:            record.UUID(rec, "id"),
		Name:          record.String(rec, "name"),
		Description:   record.StringPtr(rec, "description"),
		CreatedBy:     record.UUID(rec, "created_by"),
		Privacy:       Privacy(record.String(rec, "privacy")),
		CoverImageURL: record.StringPtr(rec, "cover_image_url"),
		CreatedAt:     record.Time(rec, "created_at"),
		UpdatedAt:     record.Time(rec, "updated_at"),
	}
}
