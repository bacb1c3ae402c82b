// Package accounts persists credential bindings between users and
// authentication providers.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores Account rows. (provider_id, account_id) is unique.
type Repository interface {
	// Create inserts a, assigning a.ID when empty. A duplicate binding yields
	// ErrAlreadyLinked; a missing owner yields common.ErrorNotFound.
	Create(ctx context.Context, a *models.Account) error
	GetByProvider(ctx context.Context, providerID, accountID string) (*models.Account, error)
	GetByUserAndProvider(ctx context.Context, userID, providerID string) (*models.Account, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Account, error)
	// UpdateCredential replaces the stored credential payload of account id.
	UpdateCredential(ctx context.Context, id, credential string) error
	// Delete removes account id owned by userID.
	Delete(ctx context.Context, userID, id string) error
}
