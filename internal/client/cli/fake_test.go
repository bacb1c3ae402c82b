package cli

import (
	"bytes"
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

// fakeAuth is a scripted authService. Unset results mean success with a
// zero value; every call is recorded by name.
type fakeAuth struct {
	store *session.Store
	calls []string

	lastEmail string
	user      *api.User
	signUpRes *services.SignUpResult
	sessions  []*api.Session
	creds     []*api.Credential
	revoked   int64
	avatarURL string
	pingErr   error
	loadFn    func() error
	errs      map[string]error

	gotEmail, gotName, gotPassword, gotToken, gotPath string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		store: session.NewStore(),
		user:  &api.User{ID: "u1", Name: "Alice", Email: "alice@example.com"},
		errs:  map[string]error{},
	}
}

func (f *fakeAuth) call(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeAuth) Session() *session.Store { return f.store }

func (f *fakeAuth) Load(ctx context.Context) error {
	if err := f.call("Load"); err != nil {
		return err
	}
	if f.loadFn != nil {
		return f.loadFn()
	}
	f.store.SetUnauthenticated()
	return nil
}

func (f *fakeAuth) LastEmail(ctx context.Context) string { return f.lastEmail }

func (f *fakeAuth) SignUp(ctx context.Context, email, name, password string) (*api.User, error) {
	f.gotEmail, f.gotName, f.gotPassword = email, name, password
	if err := f.call("SignUp"); err != nil {
		return nil, err
	}
	return &api.User{Name: name, Email: email}, nil
}

func (f *fakeAuth) SignUpWithPasskey(ctx context.Context, email, name string) (*services.SignUpResult, error) {
	f.gotEmail, f.gotName = email, name
	if err := f.call("SignUpWithPasskey"); err != nil {
		return nil, err
	}
	if f.signUpRes != nil {
		return f.signUpRes, nil
	}
	return &services.SignUpResult{User: &api.User{Name: name, Email: email}}, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*api.User, error) {
	f.gotEmail, f.gotPassword = email, password
	if err := f.call("SignIn"); err != nil {
		return nil, err
	}
	return &api.User{Email: email}, nil
}

func (f *fakeAuth) SignInWithPasskey(ctx context.Context, email string) (*api.User, error) {
	f.gotEmail = email
	if err := f.call("SignInWithPasskey"); err != nil {
		return nil, err
	}
	return f.user, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error { return f.call("SignOut") }

func (f *fakeAuth) AddPasskey(ctx context.Context, name string) error {
	f.gotName = name
	return f.call("AddPasskey")
}

func (f *fakeAuth) ListSessions(ctx context.Context) ([]*api.Session, error) {
	if err := f.call("ListSessions"); err != nil {
		return nil, err
	}
	return f.sessions, nil
}

func (f *fakeAuth) RevokeOtherSessions(ctx context.Context) (int64, error) {
	if err := f.call("RevokeOtherSessions"); err != nil {
		return 0, err
	}
	return f.revoked, nil
}

func (f *fakeAuth) ListCredentials(ctx context.Context) ([]*api.Credential, error) {
	if err := f.call("ListCredentials"); err != nil {
		return nil, err
	}
	return f.creds, nil
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, name string) (*api.User, error) {
	f.gotName = name
	if err := f.call("UpdateProfile"); err != nil {
		return nil, err
	}
	return &api.User{Name: name}, nil
}

func (f *fakeAuth) DeleteAccount(ctx context.Context) error { return f.call("DeleteAccount") }

func (f *fakeAuth) RequestEmailVerification(ctx context.Context) error {
	return f.call("RequestEmailVerification")
}

func (f *fakeAuth) VerifyEmail(ctx context.Context, token string) (*api.User, error) {
	f.gotToken = token
	if err := f.call("VerifyEmail"); err != nil {
		return nil, err
	}
	return f.user, nil
}

func (f *fakeAuth) UploadAvatar(ctx context.Context, path string) (*api.User, error) {
	f.gotPath = path
	if err := f.call("UploadAvatar"); err != nil {
		return nil, err
	}
	return f.user, nil
}

func (f *fakeAuth) AvatarURL(ctx context.Context) (string, error) {
	if err := f.call("AvatarURL"); err != nil {
		return "", err
	}
	return f.avatarURL, nil
}

func (f *fakeAuth) Ping(ctx context.Context) error {
	f.calls = append(f.calls, "Ping")
	return f.pingErr
}

func (f *fakeAuth) Close() error { return f.call("Close") }

var errBoom = errors.New("boom")

func newTestApp(input string) (*App, *fakeAuth, *bytes.Buffer) {
	fa := newFakeAuth()
	out := &bytes.Buffer{}
	c := &config.Config{}
	c.LoadDefaults()
	return &App{config: c, auth: fa, reader: rdr(input), out: out}, fa, out
}
