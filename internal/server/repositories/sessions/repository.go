// Package sessions persists bearer-token sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores Session rows. Tokens are unique.
type Repository interface {
	// Create inserts s, assigning s.ID when empty. A reference to a missing
	// user yields common.ErrorNotFound.
	Create(ctx context.Context, s *models.Session) error
	// GetByToken returns the row regardless of expiry; callers decide validity.
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	// ListByUser returns sessions of userID expiring after now, newest first.
	ListByUser(ctx context.Context, userID string, now time.Time) ([]*models.Session, error)
	// Delete removes the session by token. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteByUser removes every session of userID except keepToken and
	// returns how many were removed.
	DeleteByUser(ctx context.Context, userID, keepToken string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
