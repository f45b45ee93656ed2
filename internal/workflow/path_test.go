package workflow

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestObjectPath(t *testing.T) {
	owner := uuid.New()
	now := time.UnixMilli(1750000000000)

	key := objectPath("avatars", owner, now, "Holiday Photo.JPG")

	assert.True(t, strings.HasPrefix(key, "avatars/"+owner.String()+"/1750000000000-"),
		"key must be namespaced by prefix and owner: %s", key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), "extension must be lowercased: %s", key)
}

func TestObjectPath_Unique(t *testing.T) {
	owner := uuid.New()
	now := time.Now()

	a := objectPath("covers", owner, now, "c.png")
	b := objectPath("covers", owner, now, "c.png")

	assert.NotEqual(t, a, b,
		"two uploads at the same instant must not collide")
}

func TestNormalizedExt(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"photo.jpg", ".jpg"},
		{"photo.JPEG", ".jpeg"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{"trailingdot.", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizedExt(tt.fileName), "file %q", tt.fileName)
	}
}
