package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// AuthResult is what a successful sign-up or sign-in yields.
type AuthResult struct {
	User    *models.User
	Session *models.Session
}

// UserService composes the Strategy implementations with the SessionService:
//   - SignUp: create user, register one credential, issue a session, atomically
//   - SignIn: verify a credential, issue a session
//   - AddCredential: bind another credential to an existing user
//   - DeleteUser: remove the user; sessions and accounts cascade
type UserService struct {
	db         *sql.DB
	repos      repomanager.RepositoryManager
	sessions   *SessionService
	passkeys   *PasskeyStrategy
	strategies map[string]Strategy
}

// NewUserService wires the password strategy and, when passkeys is non-nil,
// the passkey strategy.
func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, sessions *SessionService, passwords *PasswordStrategy, passkeys *PasskeyStrategy) *UserService {
	s := &UserService{
		db:         db,
		repos:      repos,
		sessions:   sessions,
		passkeys:   passkeys,
		strategies: map[string]Strategy{},
	}
	s.register(passwords)
	if passkeys != nil {
		s.register(passkeys)
	}
	return s
}

func (s *UserService) register(st Strategy) {
	s.strategies[st.Provider()] = st
}

func (s *UserService) strategy(cred Credential) (Strategy, error) {
	if cred == nil {
		return nil, fmt.Errorf("%w: credential is required", common.ErrValidation)
	}
	st, ok := s.strategies[cred.Provider()]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported provider %q", common.ErrValidation, cred.Provider())
	}
	return st, nil
}

// SignUp creates the user, its first credential and a session in one
// transaction. Only a password can open an account: a passkey ceremony
// needs an existing user. A taken email fails with common.ErrDuplicateEmail
// before anything is written.
func (s *UserService) SignUp(ctx context.Context, email, name string, cred Credential, meta models.SessionMeta) (*AuthResult, error) {
	email = common.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	if !common.ValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}

	pc, ok := cred.(PasswordCredential)
	if !ok {
		return nil, fmt.Errorf("%w: sign-up requires a password", common.ErrValidation)
	}
	if err := ValidatePassword(pc.Password); err != nil {
		return nil, err
	}
	st, err := s.strategy(pc)
	if err != nil {
		return nil, err
	}

	_, err = s.repos.Users(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	result := &AuthResult{}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user := &models.User{Name: name, Email: email}
		if err := s.repos.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		if err := st.Register(ctx, tx, user, pc); err != nil {
			return err
		}
		session, err := s.sessions.Issue(ctx, tx, user.ID, meta)
		if err != nil {
			return err
		}
		result.User, result.Session = user, session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SignIn verifies cred and issues a new session. Each call yields a fresh token.
func (s *UserService) SignIn(ctx context.Context, cred Credential, meta models.SessionMeta) (*AuthResult, error) {
	st, err := s.strategy(cred)
	if err != nil {
		return nil, err
	}

	user, err := st.Verify(ctx, cred)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Issue(ctx, s.db, user.ID, meta)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Session: session}, nil
}

// SignOut revokes the session. Unknown tokens are not an error.
func (s *UserService) SignOut(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// GetSession validates token; see SessionService.Validate.
func (s *UserService) GetSession(ctx context.Context, token string) (*models.User, *models.Session, error) {
	return s.sessions.Validate(ctx, token)
}

func (s *UserService) ListSessions(ctx context.Context, userID string) ([]*models.Session, error) {
	return s.sessions.List(ctx, userID)
}

func (s *UserService) RevokeOtherSessions(ctx context.Context, userID, keepToken string) (int64, error) {
	return s.sessions.RevokeOthers(ctx, userID, keepToken)
}

// AddCredential binds cred to an existing user as an additional Account.
func (s *UserService) AddCredential(ctx context.Context, userID string, cred Credential) error {
	st, err := s.strategy(cred)
	if err != nil {
		return err
	}
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	return st.Register(ctx, s.db, user, cred)
}

// BeginPasskeyRegistration starts a ceremony to add a passkey to userID.
func (s *UserService) BeginPasskeyRegistration(ctx context.Context, userID string) (*Ceremony, error) {
	if s.passkeys == nil {
		return nil, fmt.Errorf("%w: passkeys are not enabled", common.ErrValidation)
	}
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return s.passkeys.BeginRegistration(ctx, user)
}

// BeginPasskeyLogin starts a sign-in ceremony; email may be empty.
func (s *UserService) BeginPasskeyLogin(ctx context.Context, email string) (*Ceremony, error) {
	if s.passkeys == nil {
		return nil, fmt.Errorf("%w: passkeys are not enabled", common.ErrValidation)
	}
	return s.passkeys.BeginLogin(ctx, email)
}

// ListCredentials returns the user's accounts with secrets stripped.
func (s *UserService) ListCredentials(ctx context.Context, userID string) ([]*models.Account, error) {
	list, err := s.repos.Accounts(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	for _, a := range list {
		a.Password = ""
		a.Credential = ""
		a.AccessToken = ""
		a.RefreshToken = ""
	}
	return list, nil
}

// UpdateProfile changes the display name.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	repo := s.repos.Users(s.db)
	if err := repo.UpdateName(ctx, userID, name); err != nil {
		return nil, fmt.Errorf("update name: %w", err)
	}
	return repo.GetByID(ctx, userID)
}

// DeleteUser removes the user together with every session and account.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.repos.Users(s.db).Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
