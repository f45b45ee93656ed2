package workflow

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Code identifies the failure class of a save attempt.
type Code string

const (
	CodeValidation         Code = "VALIDATION"
	CodeForbidden          Code = "FORBIDDEN"
	CodeAuthorizationCheck Code = "AUTHORIZATION_CHECK_FAILED"
	CodeTierExceeded       Code = "TIER_EXCEEDED"
	CodeMediaUpload        Code = "MEDIA_UPLOAD"
	CodePersistence        Code = "PERSISTENCE"
)

// SaveError is the failure result of one save attempt. Exactly one of
// the auxiliary fields is populated, depending on Code.
type SaveError struct {
	Code Code

	// CodeValidation: per-field messages, resolved entirely locally.
	FieldErrors map[string]string

	// CodeMediaUpload: the slot whose upload or URL resolution failed.
	Slot string

	// CodeTierExceeded
	Requested Tier
	Entitled  Tier

	cause error
}

func (e *SaveError) Error() string {
	switch e.Code {
	case CodeValidation:
		fields := make([]string, 0, len(e.FieldErrors))
		for f := range e.FieldErrors {
			fields = append(fields, f)
		}
		return fmt.Sprintf("validation failed on: %s", strings.Join(fields, ", "))
	case CodeForbidden:
		return "actor is not allowed to edit this entity"
	case CodeAuthorizationCheck:
		return fmt.Sprintf("authorization check failed: %v", e.cause)
	case CodeTierExceeded:
		return fmt.Sprintf("tier %s exceeds entitlement %s", e.Requested, e.Entitled)
	case CodeMediaUpload:
		return fmt.Sprintf("media upload failed on slot %s: %v", e.Slot, e.cause)
	case CodePersistence:
		return fmt.Sprintf("record persistence failed: %v", e.cause)
	default:
		return fmt.Sprintf("save failed: %v", e.cause)
	}
}

func (e *SaveError) Unwrap() error {
	return e.cause
}

// AsSaveError unwraps err into a *SaveError when possible.
func AsSaveError(err error) (*SaveError, bool) {
	var se *SaveError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// newValidationError flattens ozzo's error tree into per-field
// messages so the form layer can render them next to the fields.
func newValidationError(err error) *SaveError {
	fieldErrors := map[string]string{}

	var ve validation.Errors
	if errors.As(err, &ve) {
		for field, fieldErr := range ve {
			fieldErrors[field] = fieldErr.Error()
		}
	} else {
		fieldErrors["_form"] = err.Error()
	}

	return &SaveError{Code: CodeValidation, FieldErrors: fieldErrors, cause: err}
}
