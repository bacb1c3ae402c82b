package models

import "time"

// Verification is a single-use challenge keyed by Identifier.
type Verification struct {
	ID         string
	Identifier string
	Value      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (v *Verification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
