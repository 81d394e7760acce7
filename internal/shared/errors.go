// Package shared holds sentinels used across repository and service
// boundaries so callers can branch with errors.Is.
package shared

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrProfileExists     = errors.New("user already has a profile")
	ErrInvalidCredential = errors.New("incorrect password")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmptySearchTerm   = errors.New("empty search term")
)
