package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("unique constraint violated")
	ErrUnknownDriver = errors.New("unknown database driver")
)
