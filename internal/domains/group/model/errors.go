package model

import "errors"

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotAdmin      = errors.New("actor is not an admin of this group")
	ErrAlreadyMember = errors.New("user is already a member of this group")
)
