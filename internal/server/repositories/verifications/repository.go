// Package verifications persists short-lived single-use challenges.
package verifications

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, v *models.Verification) error
	// GetByIdentifier returns the newest record for identifier, expired or not.
	GetByIdentifier(ctx context.Context, identifier string) (*models.Verification, error)
	// Consume deletes the record for identifier and returns it. It is the
	// single-use read; a second call yields common.ErrorNotFound.
	Consume(ctx context.Context, identifier string) (*models.Verification, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
