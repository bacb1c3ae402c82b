package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// PasswordStrategy stores argon2id hashes in Account rows with provider
// "password" and account id equal to the user id.
type PasswordStrategy struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewPasswordStrategy(db *sql.DB, repos repomanager.RepositoryManager) *PasswordStrategy {
	return &PasswordStrategy{db: db, repos: repos}
}

func (p *PasswordStrategy) Provider() string { return common.ProviderPassword }

// ValidatePassword enforces the length policy.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, common.MinPasswordLength)
	}
	if n > common.MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters", common.ErrValidation, common.MaxPasswordLength)
	}
	return nil
}

func (p *PasswordStrategy) Register(ctx context.Context, db dbx.DBTX, user *models.User, cred Credential) error {
	pc, ok := cred.(PasswordCredential)
	if !ok {
		return fmt.Errorf("%w: expected password credential", common.ErrValidation)
	}
	if err := ValidatePassword(pc.Password); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(pc.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = p.repos.Accounts(db).Create(ctx, &models.Account{
		AccountID:  user.ID,
		ProviderID: common.ProviderPassword,
		UserID:     user.ID,
		Password:   hash,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrAlreadyLinked) {
			return fmt.Errorf("%w: password already set", common.ErrValidation)
		}
		return fmt.Errorf("create password account: %w", err)
	}
	return nil
}

// Verify looks the user up by email and compares the password. Unknown
// emails and users without a password account still pay for one hash
// comparison.
func (p *PasswordStrategy) Verify(ctx context.Context, cred Credential) (*models.User, error) {
	pc, ok := cred.(PasswordCredential)
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	user, err := p.repos.Users(p.db).GetByEmail(ctx, common.NormalizeEmail(pc.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.DummyCompare(pc.Password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	account, err := p.repos.Accounts(p.db).GetByUserAndProvider(ctx, user.ID, common.ProviderPassword)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.DummyCompare(pc.Password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup password account: %w", err)
	}

	match, err := cryptox.ComparePassword(account.Password, pc.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: stored hash: %v", common.ErrorInternal, err)
	}
	if !match {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}
