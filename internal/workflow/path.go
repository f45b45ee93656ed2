package workflow

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

// objectPath builds a fresh object key for one upload:
//
//	{prefix}/{ownerID}/{unixMillis}-{xid}{.ext}
//
// Paths are namespaced by owner and kind prefix, and the timestamp
// plus xid component makes two concurrent uploads to the same entity
// land on different keys instead of silently overwriting each other.
func objectPath(prefix string, ownerID uuid.UUID, now time.Time, fileName string) string {
	return fmt.Sprintf("%s/%s/%d-%s%s",
		strings.Trim(prefix, "/"),
		ownerID,
		now.UnixMilli(),
		xid.New().String(),
		normalizedExt(fileName),
	)
}

// normalizedExt returns the lowercased file extension including the
// dot, or empty when the name has none.
func normalizedExt(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "." {
		return ""
	}
	return ext
}
