package model

import "errors"

var (
	ErrMemorialNotFound = errors.New("memorial not found")
	ErrNotOwner         = errors.New("actor may not modify this memorial")
	ErrDatabaseQuery    = errors.New("database query error")
)
