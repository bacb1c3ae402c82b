package models

import "time"

// Session grants its bearer Token authenticated status for UserID until
// ExpiresAt.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the session is no longer valid at now. A session
// is invalid from the instant of its expiry onward.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionMeta is client metadata recorded on a new session.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}
