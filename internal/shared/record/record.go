// Package record coerces the loosely typed column maps the record
// store returns (RETURNING * rows, pgx scan values) into Go types.
package record

import (
	"time"

	"github.com/google/uuid"
)

func UUID(rec map[string]interface{}, column string) uuid.UUID {
	switch v := rec[column].(type) {
	case uuid.UUID:
		return v
	case [16]byte:
		return uuid.UUID(v)
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil
		}
		return id
	default:
		return uuid.Nil
	}
}

func UUIDPtr(rec map[string]interface{}, column string) *uuid.UUID {
	id := UUID(rec, column)
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func String(rec map[string]interface{}, column string) string {
	if v, ok := rec[column].(string); ok {
		return v
	}
	return ""
}

func StringPtr(rec map[string]interface{}, column string) *string {
	if v, ok := rec[column].(string); ok {
		return &v
	}
	return nil
}

func Bool(rec map[string]interface{}, column string) bool {
	v, _ := rec[column].(bool)
	return v
}

func Time(rec map[string]interface{}, column string) time.Time {
	if v, ok := rec[column].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func TimePtr(rec map[string]interface{}, column string) *time.Time {
	if v, ok := rec[column].(time.Time); ok {
		return &v
	}
	return nil
}
