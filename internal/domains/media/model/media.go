package model

import (
	"time"

	"github.com/google/uuid"
)

// Media is one bookkeeping row per stored object: who uploaded it,
// where it lives, and which entity it belongs to.
type Media struct {
	ID          uuid.UUID              `json:"id" db:"id"`
	UploaderID  uuid.UUID              `json:"uploader_id" db:"uploader_id"`
	StoragePath string                 `json:"storage_path" db:"storage_path"`
	EntityID    *uuid.UUID             `json:"entity_id" db:"entity_id"`
	EntityType  string                 `json:"entity_type" db:"entity_type"`
	Metadata    map[string]interface{} `json:"metadata" db:"metadata"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}

// Entity types recorded with each upload. The type names which slot of
// which kind the object was stored for.
const (
	EntityTypeMemorialProfile = "memorial_profile"
	EntityTypeMemorialCover   = "memorial_cover"
	EntityTypeGroupCover      = "group_cover"
	EntityTypeProfileAvatar   = "profile_avatar"
	EntityTypeProfileCover    = "profile_cover"
)
