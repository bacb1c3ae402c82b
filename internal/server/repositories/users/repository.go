// Package users declares and implements persistence for identity anchors.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores User records. Email uniqueness is enforced by storage.
type Repository interface {
	// Create inserts u, assigning u.ID when empty. A taken email yields
	// common.ErrDuplicateEmail.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, id, name string) error
	SetImage(ctx context.Context, id, image string) error
	SetEmailVerified(ctx context.Context, id string, verified bool) error
	// Delete removes the user; sessions and accounts go with it.
	Delete(ctx context.Context, id string) error
}
