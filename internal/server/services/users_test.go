package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userEnv struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	store    *memStore
	sessions *SessionService
	passkeys *PasskeyStrategy
	provider *fakePasskeyProvider
	users    *UserService
}

func newUserEnv(t *testing.T) *userEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := newMemStore()
	sessions := NewSessionService(db, store, time.Hour)
	passkeys, provider := newTestPasskeyStrategy(store)
	passkeys.db = db

	return &userEnv{
		db:       db,
		mock:     mock,
		store:    store,
		sessions: sessions,
		passkeys: passkeys,
		provider: provider,
		users:    NewUserService(db, store, sessions, NewPasswordStrategy(db, store), passkeys),
	}
}

// signUp runs a sign-up that is expected to commit.
func (e *userEnv) signUp(t *testing.T, email, name, password string) *AuthResult {
	t.Helper()
	e.mock.ExpectBegin()
	e.mock.ExpectExec("^SAVEPOINT issue_session$").WillReturnResult(sqlmock.NewResult(0, 0))
	e.mock.ExpectExec("^RELEASE SAVEPOINT issue_session$").WillReturnResult(sqlmock.NewResult(0, 0))
	e.mock.ExpectCommit()
	res, err := e.users.SignUp(context.Background(), email, name, PasswordCredential{Password: password}, models.SessionMeta{})
	require.NoError(t, err)
	require.NoError(t, e.mock.ExpectationsWereMet())
	return res
}

func TestUserService_SignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)

	up := env.signUp(t, "a@x.com", "A", "longenough1")
	require.NotEmpty(t, up.User.ID)
	assert.Equal(t, "a@x.com", up.User.Email)
	assert.Equal(t, up.User.ID, up.Session.UserID)

	accounts := env.store.accountsOf(up.User.ID)
	require.Len(t, accounts, 1)
	assert.Equal(t, common.ProviderPassword, accounts[0].ProviderID)

	in, err := env.users.SignIn(ctx, PasswordCredential{Email: "a@x.com", Password: "longenough1"}, models.SessionMeta{UserAgent: "cli"})
	require.NoError(t, err)
	assert.Equal(t, up.User.ID, in.User.ID)
	assert.NotEqual(t, up.Session.Token, in.Session.Token)
	assert.Equal(t, "cli", in.Session.UserAgent)

	user, session, err := env.users.GetSession(ctx, in.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, up.User.ID, user.ID)
	assert.Equal(t, in.Session.Token, session.Token)

	before := env.store.sessionCount(up.User.ID)
	_, err = env.users.SignIn(ctx, PasswordCredential{Email: "a@x.com", Password: "wrong"}, models.SessionMeta{})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, before, env.store.sessionCount(up.User.ID), "failed sign-in issues no session")
}

func TestUserService_SignUp_NormalizesEmail(t *testing.T) {
	env := newUserEnv(t)
	res := env.signUp(t, "  Mixed@Example.COM ", " Name ", "longenough1")
	assert.Equal(t, "mixed@example.com", res.User.Email)
	assert.Equal(t, "Name", res.User.Name)
}

func TestUserService_SignUp_DuplicateEmailWritesNothing(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	first := env.signUp(t, "a@x.com", "A", "longenough1")

	_, err := env.users.SignUp(ctx, "A@X.com", "Other", PasswordCredential{Password: "longenough2"}, models.SessionMeta{})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)

	require.NoError(t, env.mock.ExpectationsWereMet(), "no transaction was opened")
	assert.Len(t, env.store.users, 1)
	assert.Len(t, env.store.accountsOf(first.User.ID), 1)
	assert.Equal(t, 1, env.store.sessionCount(first.User.ID))
}

func TestUserService_SignUp_Validation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		email string
		uname string
		cred  Credential
	}{
		{"bad email", "not-an-email", "A", PasswordCredential{Password: "longenough1"}},
		{"empty name", "a@x.com", "   ", PasswordCredential{Password: "longenough1"}},
		{"short password", "a@x.com", "A", PasswordCredential{Password: "short"}},
		{"passkey cannot open an account", "a@x.com", "A", PasskeyCredential{Handle: "h"}},
		{"no credential", "a@x.com", "A", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newUserEnv(t)
			_, err := env.users.SignUp(ctx, tc.email, tc.uname, tc.cred, models.SessionMeta{})
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Empty(t, env.store.users)
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}

func TestUserService_SignUp_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	env.store.fail["sessions.Create"] = errors.New("insert failed")

	env.mock.ExpectBegin()
	env.mock.ExpectExec("^SAVEPOINT issue_session$").WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectExec("^ROLLBACK TO SAVEPOINT issue_session$").WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectRollback()

	_, err := env.users.SignUp(ctx, "a@x.com", "A", PasswordCredential{Password: "longenough1"}, models.SessionMeta{})
	require.Error(t, err)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestUserService_SignUp_BeginFails(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	env.mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	_, err := env.users.SignUp(ctx, "a@x.com", "A", PasswordCredential{Password: "longenough1"}, models.SessionMeta{})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Empty(t, env.store.users)
}

func TestUserService_SignOutInvalidatesSession(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	up := env.signUp(t, "a@x.com", "A", "longenough1")

	require.NoError(t, env.users.SignOut(ctx, up.Session.Token))
	_, _, err := env.users.GetSession(ctx, up.Session.Token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)

	assert.NoError(t, env.users.SignOut(ctx, up.Session.Token))
}

func TestUserService_ExpiredSessionRowStillPresent(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	up := env.signUp(t, "a@x.com", "A", "longenough1")

	env.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err := env.users.GetSession(ctx, up.Session.Token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
	assert.Equal(t, 1, env.store.sessionCount(up.User.ID), "row is not removed by validation")
}

func TestUserService_DeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	up := env.signUp(t, "a@x.com", "A", "longenough1")

	require.NoError(t, env.users.DeleteUser(ctx, up.User.ID))

	_, _, err := env.users.GetSession(ctx, up.Session.Token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
	assert.Empty(t, env.store.accountsOf(up.User.ID))
	assert.Zero(t, env.store.sessionCount(up.User.ID))

	_, err = env.users.SignIn(ctx, PasswordCredential{Email: "a@x.com", Password: "longenough1"}, models.SessionMeta{})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.ErrorIs(t, env.users.DeleteUser(ctx, up.User.ID), common.ErrorNotFound)
}

func TestUserService_PasskeyFailureAfterSignUpIsNotFatal(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	up := env.signUp(t, "a@x.com", "A", "longenough1")

	ceremony, err := env.users.BeginPasskeyRegistration(ctx, up.User.ID)
	require.NoError(t, err)

	env.provider.createErr = errors.New("signature mismatch")
	err = env.users.AddCredential(ctx, up.User.ID, PasskeyCredential{Handle: ceremony.Handle, Response: []byte("{}")})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	accounts := env.store.accountsOf(up.User.ID)
	require.Len(t, accounts, 1)
	assert.Equal(t, common.ProviderPassword, accounts[0].ProviderID)

	_, _, err = env.users.GetSession(ctx, up.Session.Token)
	assert.NoError(t, err)
}

func TestUserService_PasskeyRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	up := env.signUp(t, "a@x.com", "A", "longenough1")

	ceremony, err := env.users.BeginPasskeyRegistration(ctx, up.User.ID)
	require.NoError(t, err)
	require.NoError(t, env.users.AddCredential(ctx, up.User.ID, PasskeyCredential{Handle: ceremony.Handle, Response: []byte("{}"), Name: "phone"}))

	login, err := env.users.BeginPasskeyLogin(ctx, "a@x.com")
	require.NoError(t, err)
	res, err := env.users.SignIn(ctx, PasskeyCredential{Handle: login.Handle, Response: []byte("{}")}, models.SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, up.User.ID, res.User.ID)

	creds, err := env.users.ListCredentials(ctx, up.User.ID)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	for _, c := range creds {
		assert.Empty(t, c.Password)
		assert.Empty(t, c.Credential)
	}
}

func TestUserService_PasskeysDisabled(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	svc := NewUserService(env.db, env.store, env.sessions, NewPasswordStrategy(env.db, env.store), nil)

	_, err := svc.BeginPasskeyRegistration(ctx, "id")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.BeginPasskeyLogin(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.SignIn(ctx, PasskeyCredential{}, models.SessionMeta{})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUserService_SessionsManagement(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	up := env.signUp(t, "a@x.com", "A", "longenough1")

	second, err := env.users.SignIn(ctx, PasswordCredential{Email: "a@x.com", Password: "longenough1"}, models.SessionMeta{})
	require.NoError(t, err)

	list, err := env.users.ListSessions(ctx, up.User.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := env.users.RevokeOtherSessions(ctx, up.User.ID, second.Session.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, _, err = env.users.GetSession(ctx, up.Session.Token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newUserEnv(t)
	up := env.signUp(t, "a@x.com", "A", "longenough1")

	u, err := env.users.UpdateProfile(ctx, up.User.ID, " New Name ")
	require.NoError(t, err)
	assert.Equal(t, "New Name", u.Name)

	_, err = env.users.UpdateProfile(ctx, up.User.ID, "")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.users.UpdateProfile(ctx, "missing", "X")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
