// Package apperr holds the error kinds surfaced by a regeneration run.
package apperr

import (
	"errors"
	"io/fs"
)

var (
	ErrMissingResource = errors.New("missing resource")
	ErrPermission      = errors.New("permission denied")
	ErrRevision        = errors.New("revision lookup failed")
)

// Classify maps a file-system error onto ErrMissingResource or
// ErrPermission. Other errors are returned as nil.
func Classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrMissingResource
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	default:
		return nil
	}
}
