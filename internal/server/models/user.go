// Package models holds the persistent identity records: users, their
// sessions, credential bindings (accounts) and short-lived verifications.
package models

import "time"

// User is the identity anchor. ID never changes once assigned; Email is
// unique and stored normalized.
type User struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	// Image is the object key of the avatar, empty when unset.
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
