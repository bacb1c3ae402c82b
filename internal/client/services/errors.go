package services

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// User-facing messages. Nothing else ever reaches the UI.
const (
	MsgUnexpected          = "An unexpected error occurred"
	MsgSignUpFailed        = "Failed to create account"
	MsgSignInFailed        = "Failed to sign in"
	MsgDuplicateEmail      = "An account with this email already exists"
	MsgInvalidCredentials  = "Invalid email or password"
	MsgChallengeExpired    = "The passkey request expired. Please try again"
	MsgSessionExpired      = "Your session has expired. Please sign in again"
	MsgUnavailable         = "The service is unavailable. Please try again later"
	MsgPasskeyFailed       = "Failed to register passkey"
	MsgNotFound            = "Nothing found"
	MsgPasskeySignUpWarned = "Failed to register passkey. You can add one later from your account settings."
)

// Error is the only error type the façade returns.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// normalize maps err to a fixed message, using fallback for validation
// failures and anything not specifically recognised as a user condition.
func normalize(err error, fallback string) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrDuplicateEmail):
		return &Error{Message: MsgDuplicateEmail}
	case errors.Is(err, common.ErrInvalidCredentials):
		return &Error{Message: MsgInvalidCredentials}
	case errors.Is(err, common.ErrChallengeExpired):
		return &Error{Message: MsgChallengeExpired}
	case errors.Is(err, common.ErrSessionInvalid):
		return &Error{Message: MsgSessionExpired}
	case errors.Is(err, common.ErrUnavailable), errors.Is(err, common.ErrStoreUnavailable):
		return &Error{Message: MsgUnavailable}
	case errors.Is(err, common.ErrorNotFound):
		return &Error{Message: MsgNotFound}
	case errors.Is(err, common.ErrValidation):
		return &Error{Message: fallback}
	default:
		return &Error{Message: MsgUnexpected}
	}
}
