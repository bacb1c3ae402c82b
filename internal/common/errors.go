// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Identity lifecycle errors.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrChallengeExpired   = errors.New("challenge expired")
	ErrSessionInvalid     = errors.New("session invalid")

	// Storage / transport availability.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnavailable      = errors.New("service unavailable")
)
