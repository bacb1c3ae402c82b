package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

const emailVerificationPrefix = "email-verification:"

// EmailVerificationService issues and redeems single-use email
// verification tokens. Delivery of the token is left to the caller.
type EmailVerificationService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	ttl   time.Duration
	now   func() time.Time
}

func NewEmailVerificationService(db *sql.DB, repos repomanager.RepositoryManager, ttl time.Duration) *EmailVerificationService {
	return &EmailVerificationService{db: db, repos: repos, ttl: ttl, now: time.Now}
}

// Request stores a fresh token for userID and returns it.
func (s *EmailVerificationService) Request(ctx context.Context, userID string) (string, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user.EmailVerified {
		return "", fmt.Errorf("%w: email already verified", common.ErrValidation)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	err = s.repos.Verifications(s.db).Create(ctx, &models.Verification{
		Identifier: emailVerificationPrefix + token,
		Value:      userID,
		ExpiresAt:  s.now().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("store verification: %w", err)
	}
	return token, nil
}

// Verify redeems token and marks the owner's email verified. The token is
// consumed even when it turns out to be expired.
func (s *EmailVerificationService) Verify(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrChallengeExpired
	}

	v, err := s.repos.Verifications(s.db).Consume(ctx, emailVerificationPrefix+token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrChallengeExpired
		}
		return nil, fmt.Errorf("load verification: %w", err)
	}
	if v.Expired(s.now()) {
		return nil, common.ErrChallengeExpired
	}

	users := s.repos.Users(s.db)
	if err := users.SetEmailVerified(ctx, v.Value, true); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	return users.GetByID(ctx, v.Value)
}
