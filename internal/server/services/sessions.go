package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
)

// sessionTokenBytes is the entropy of a bearer token before hex encoding.
const sessionTokenBytes = 32

// issueAttempts bounds retries on the (astronomically unlikely) token collision.
const issueAttempts = 3

const issueSavepoint = "issue_session"

// SessionService issues, validates and revokes bearer-token sessions.
// Validation never mutates state: there is no sliding renewal.
type SessionService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionService(db *sql.DB, repos repomanager.RepositoryManager, ttl time.Duration) *SessionService {
	return &SessionService{db: db, repos: repos, ttl: ttl, now: time.Now}
}

// Issue creates a session for userID through db, which may be a transaction.
// Inside a transaction every attempt runs under a savepoint, since a failed
// insert would otherwise abort the whole transaction and rule out a retry.
func (s *SessionService) Issue(ctx context.Context, db dbx.DBTX, userID string, meta models.SessionMeta) (*models.Session, error) {
	repo := s.repos.Sessions(db)
	tx, inTx := db.(*sql.Tx)

	for attempt := 0; ; attempt++ {
		token, err := common.MakeRandHexString(sessionTokenBytes)
		if err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}

		session := &models.Session{
			UserID:    userID,
			Token:     token,
			ExpiresAt: s.now().Add(s.ttl),
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		}

		if inTx {
			if _, err := tx.ExecContext(ctx, "SAVEPOINT "+issueSavepoint); err != nil {
				return nil, fmt.Errorf("create session: %w", dbx.WrapError(err))
			}
		}

		err = repo.Create(ctx, session)
		if inTx {
			stmt := "RELEASE SAVEPOINT " + issueSavepoint
			if err != nil {
				stmt = "ROLLBACK TO SAVEPOINT " + issueSavepoint
			}
			if _, spErr := tx.ExecContext(ctx, stmt); spErr != nil {
				return nil, fmt.Errorf("create session: %w", dbx.WrapError(spErr))
			}
		}
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, sessions.ErrTokenCollision) || attempt+1 >= issueAttempts {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
}

// Validate resolves token to its session and owning user. A missing, empty
// or expired token yields common.ErrSessionInvalid, even if the expired row
// still exists.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, common.ErrSessionInvalid
	}

	session, err := s.repos.Sessions(s.db).GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrSessionInvalid
		}
		return nil, nil, fmt.Errorf("lookup session: %w", err)
	}

	if session.Expired(s.now()) {
		return nil, nil, common.ErrSessionInvalid
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrSessionInvalid
		}
		return nil, nil, fmt.Errorf("lookup session owner: %w", err)
	}

	return user, session, nil
}

// Revoke deletes the session. Revoking an absent token succeeds.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repos.Sessions(s.db).Delete(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// List returns the unexpired sessions of userID.
func (s *SessionService) List(ctx context.Context, userID string) ([]*models.Session, error) {
	list, err := s.repos.Sessions(s.db).ListByUser(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return list, nil
}

// RevokeOthers deletes every session of userID except keepToken.
func (s *SessionService) RevokeOthers(ctx context.Context, userID, keepToken string) (int64, error) {
	n, err := s.repos.Sessions(s.db).DeleteByUser(ctx, userID, keepToken)
	if err != nil {
		return 0, fmt.Errorf("revoke other sessions: %w", err)
	}
	return n, nil
}
