package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const validToken = "valid-token"

var testUser = &models.User{ID: "u1", Name: "Alice", Email: "a@x.com"}

// ---- fakes ----

type fakeUsers struct {
	signUpErr error
	signInErr error
	revoked   []string
	lastMeta  models.SessionMeta
	lastCred  services.Credential
	addErr    error
	deleted   string
	sessions  []*models.Session
}

func (f *fakeUsers) result() *services.AuthResult {
	return &services.AuthResult{
		User:    testUser,
		Session: &models.Session{ID: "s1", UserID: testUser.ID, Token: "new-token", ExpiresAt: time.Now().Add(time.Hour)},
	}
}

func (f *fakeUsers) SignUp(ctx context.Context, email, name string, cred services.Credential, meta models.SessionMeta) (*services.AuthResult, error) {
	f.lastMeta, f.lastCred = meta, cred
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.result(), nil
}

func (f *fakeUsers) SignIn(ctx context.Context, cred services.Credential, meta models.SessionMeta) (*services.AuthResult, error) {
	f.lastMeta, f.lastCred = meta, cred
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.result(), nil
}

func (f *fakeUsers) SignOut(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeUsers) GetSession(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token != validToken {
		return nil, nil, common.ErrSessionInvalid
	}
	return testUser, &models.Session{ID: "s0", UserID: testUser.ID, Token: validToken}, nil
}

func (f *fakeUsers) ListSessions(ctx context.Context, userID string) ([]*models.Session, error) {
	return f.sessions, nil
}

func (f *fakeUsers) RevokeOtherSessions(ctx context.Context, userID, keepToken string) (int64, error) {
	f.revoked = append(f.revoked, "others-of:"+keepToken)
	return 2, nil
}

func (f *fakeUsers) DeleteUser(ctx context.Context, userID string) error {
	f.deleted = userID
	return nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID, name string) (*models.User, error) {
	u := *testUser
	u.Name = name
	return &u, nil
}

func (f *fakeUsers) ListCredentials(ctx context.Context, userID string) ([]*models.Account, error) {
	return []*models.Account{{ID: "a1", ProviderID: common.ProviderPassword}, {ID: "a2", ProviderID: common.ProviderPasskey, Name: "phone"}}, nil
}

func (f *fakeUsers) AddCredential(ctx context.Context, userID string, cred services.Credential) error {
	f.lastCred = cred
	return f.addErr
}

func (f *fakeUsers) BeginPasskeyRegistration(ctx context.Context, userID string) (*services.Ceremony, error) {
	return &services.Ceremony{Handle: "reg-handle", Options: []byte(`{"publicKey":{}}`)}, nil
}

func (f *fakeUsers) BeginPasskeyLogin(ctx context.Context, email string) (*services.Ceremony, error) {
	return &services.Ceremony{Handle: "login-handle", Options: []byte(`{"publicKey":{}}`)}, nil
}

type fakeEmails struct {
	requested string
}

func (f *fakeEmails) Request(ctx context.Context, userID string) (string, error) {
	f.requested = userID
	return "tok", nil
}

func (f *fakeEmails) Verify(ctx context.Context, token string) (*models.User, error) {
	if token != "tok" {
		return nil, common.ErrChallengeExpired
	}
	u := *testUser
	u.EmailVerified = true
	return &u, nil
}

type fakeAvatars struct {
	set string
}

func (f *fakeAvatars) CreateUpload(ctx context.Context, userID string) (string, string, error) {
	return "avatars/" + userID + "/k", "https://s3/put", nil
}

func (f *fakeAvatars) SetAvatar(ctx context.Context, userID, key string) error {
	f.set = key
	return nil
}

func (f *fakeAvatars) GetURL(ctx context.Context, userID string) (string, error) {
	if f.set == "" {
		return "", common.ErrorNotFound
	}
	return "https://s3/get", nil
}
