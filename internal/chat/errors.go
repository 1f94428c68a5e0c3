package chat

import "errors"

var (
	// ErrForbidden means the caller is authenticated but lacks the role for
	// the requested action. The connection stays alive.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced conversation or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the payload was rejected before any persistence
	// attempt.
	ErrValidation = errors.New("validation failed")
)
