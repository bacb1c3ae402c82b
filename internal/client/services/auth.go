// Package services contains the client-side auth façade the CLI talks to.
// It owns the transport, the persisted session token and the observable
// session state, and reports every failure as an *Error with a fixed
// user-facing message.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/netx"
)

// Authenticator performs the device side of a passkey ceremony: it takes
// the server's options JSON and returns the authenticator's response JSON.
type Authenticator interface {
	Create(ctx context.Context, options json.RawMessage) (json.RawMessage, error)
	Get(ctx context.Context, options json.RawMessage) (json.RawMessage, error)
}

// SignUpResult is returned by SignUpWithPasskey. Warning is set when the
// account was created but the passkey could not be added.
type SignUpResult struct {
	User    *api.User
	Warning string
}

// throwawayPasswordBytes sizes the random password a passkey-first sign-up
// uses to open the account. Nobody ever learns it.
const throwawayPasswordBytes = 32

// test seams
var (
	readFile = os.ReadFile
	upload   = netx.UploadToPresignedURL
)

type AuthService struct {
	client client.Client
	tokens metadata.Repository
	authn  Authenticator
	store  *session.Store

	// mu orders changes to the local session; gen counts them so a Load
	// that was overtaken by a sign-in or sign-out discards its result.
	mu  sync.Mutex
	gen uint64
}

func NewAuthService(c client.Client, tokens metadata.Repository, authn Authenticator) *AuthService {
	return &AuthService{client: c, tokens: tokens, authn: authn, store: session.NewStore()}
}

// Session exposes the observable session state.
func (a *AuthService) Session() *session.Store {
	return a.store
}

// fail normalizes err. A rejected session token means the session was
// revoked or expired, so local state is dropped as well.
func (a *AuthService) fail(ctx context.Context, err error, fallback string) error {
	if errors.Is(err, common.ErrSessionInvalid) {
		a.dropSession(ctx)
	}
	return normalize(err, fallback)
}

func (a *AuthService) dropSession(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropSessionLocked(ctx)
}

func (a *AuthService) dropSessionLocked(ctx context.Context) {
	a.gen++
	a.client.SetToken("")
	if err := a.tokens.Delete(ctx, metadata.KeySessionToken); err != nil {
		log.Printf("failed to forget session token: %v", err)
	}
	a.store.SetUnauthenticated()
}

// establish persists a freshly issued session and publishes it.
func (a *AuthService) establish(ctx context.Context, resp *api.AuthResponse) error {
	if resp == nil || resp.User == nil || resp.Session == nil || resp.Session.Token == "" {
		return fmt.Errorf("%w: incomplete auth response", common.ErrorInternal)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	if err := a.tokens.Set(ctx, metadata.KeySessionToken, resp.Session.Token); err != nil {
		return err
	}
	if err := a.tokens.Set(ctx, metadata.KeyEmail, resp.User.Email); err != nil {
		return err
	}
	a.client.SetToken(resp.Session.Token)
	a.store.SetAuthenticated(resp.User, resp.Session)
	return nil
}

// Load resolves the stored token, if any, into a session. A missing or
// rejected token leaves the state unauthenticated; an unreachable server
// leaves it pending so a later Load can retry. A sign-in or sign-out that
// completes while Load waits for the server wins over Load's result.
func (a *AuthService) Load(ctx context.Context) error {
	a.mu.Lock()
	if a.store.Current().State == session.StateAuthenticated {
		a.mu.Unlock()
		return nil
	}
	token, err := a.tokens.Get(ctx, metadata.KeySessionToken)
	if errors.Is(err, common.ErrorNotFound) || (err == nil && token == "") {
		a.store.SetUnauthenticated()
		a.mu.Unlock()
		return nil
	}
	if err != nil {
		a.mu.Unlock()
		return normalize(err, MsgUnexpected)
	}
	a.client.SetToken(token)
	gen := a.gen
	a.mu.Unlock()

	resp, err := a.client.GetSession(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		return nil
	}
	if err != nil {
		if errors.Is(err, common.ErrSessionInvalid) {
			a.dropSessionLocked(ctx)
		}
		return normalize(err, MsgUnexpected)
	}
	a.store.SetAuthenticated(resp.User, resp.Session)
	return nil
}

// LastEmail returns the email of the most recent sign-in, if remembered.
func (a *AuthService) LastEmail(ctx context.Context) string {
	email, err := a.tokens.Get(ctx, metadata.KeyEmail)
	if err != nil {
		return ""
	}
	return email
}

func (a *AuthService) SignUp(ctx context.Context, email, name, password string) (*api.User, error) {
	resp, err := a.client.SignUp(ctx, email, name, password)
	if err != nil {
		return nil, a.fail(ctx, err, MsgSignUpFailed)
	}
	if err := a.establish(ctx, resp); err != nil {
		return nil, normalize(err, MsgSignUpFailed)
	}
	return resp.User, nil
}

// SignUpWithPasskey opens the account with a random password nobody knows,
// then adds a passkey. Account creation failing is fatal; the passkey step
// failing is only reported in SignUpResult.Warning, the session stays.
func (a *AuthService) SignUpWithPasskey(ctx context.Context, email, name string) (*SignUpResult, error) {
	password, err := common.MakeRandHexString(throwawayPasswordBytes)
	if err != nil {
		return nil, &Error{Message: MsgUnexpected}
	}

	u, err := a.SignUp(ctx, email, name, password)
	if err != nil {
		return nil, err
	}

	res := &SignUpResult{User: u}
	if err := a.registerPasskey(ctx, ""); err != nil {
		log.Printf("passkey registration after sign-up failed: %v", err)
		res.Warning = MsgPasskeySignUpWarned
	}
	return res, nil
}

func (a *AuthService) SignIn(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, normalize(err, MsgSignInFailed)
	}
	if err := a.establish(ctx, resp); err != nil {
		return nil, normalize(err, MsgSignInFailed)
	}
	return resp.User, nil
}

// SignInWithPasskey runs an assertion ceremony. An empty email asks for a
// discoverable credential.
func (a *AuthService) SignInWithPasskey(ctx context.Context, email string) (*api.User, error) {
	if a.authn == nil {
		return nil, &Error{Message: MsgUnexpected}
	}
	cer, err := a.client.BeginPasskeyLogin(ctx, email)
	if err != nil {
		return nil, normalize(err, MsgSignInFailed)
	}
	assertion, err := a.authn.Get(ctx, cer.Options)
	if err != nil {
		log.Printf("authenticator get: %v", err)
		return nil, &Error{Message: MsgSignInFailed}
	}
	resp, err := a.client.FinishPasskeyLogin(ctx, cer.Handle, assertion)
	if err != nil {
		return nil, normalize(err, MsgSignInFailed)
	}
	if err := a.establish(ctx, resp); err != nil {
		return nil, normalize(err, MsgSignInFailed)
	}
	return resp.User, nil
}

// SignOut revokes the session on the server when it can and always forgets
// it locally.
func (a *AuthService) SignOut(ctx context.Context) error {
	if err := a.client.SignOut(ctx); err != nil {
		log.Printf("server sign-out failed: %v", err)
	}
	a.mu.Lock()
	a.gen++
	a.client.SetToken("")
	err := a.tokens.Delete(ctx, metadata.KeySessionToken)
	a.store.SetUnauthenticated()
	a.mu.Unlock()
	if err != nil {
		return normalize(err, MsgUnexpected)
	}
	return nil
}

// AddPasskey binds a new passkey to the signed-in user.
func (a *AuthService) AddPasskey(ctx context.Context, name string) error {
	if err := a.registerPasskey(ctx, name); err != nil {
		if errors.Is(err, errAuthenticator) {
			return &Error{Message: MsgPasskeyFailed}
		}
		return a.fail(ctx, err, MsgPasskeyFailed)
	}
	return nil
}

var errAuthenticator = errors.New("authenticator failed")

func (a *AuthService) registerPasskey(ctx context.Context, name string) error {
	if a.authn == nil {
		return fmt.Errorf("%w: no authenticator", errAuthenticator)
	}
	cer, err := a.client.BeginPasskeyRegistration(ctx)
	if err != nil {
		return err
	}
	attestation, err := a.authn.Create(ctx, cer.Options)
	if err != nil {
		return fmt.Errorf("%w: %v", errAuthenticator, err)
	}
	return a.client.FinishPasskeyRegistration(ctx, cer.Handle, attestation, name)
}

func (a *AuthService) ListSessions(ctx context.Context) ([]*api.Session, error) {
	list, err := a.client.ListSessions(ctx)
	if err != nil {
		return nil, a.fail(ctx, err, MsgUnexpected)
	}
	return list, nil
}

func (a *AuthService) RevokeOtherSessions(ctx context.Context) (int64, error) {
	n, err := a.client.RevokeOtherSessions(ctx)
	if err != nil {
		return 0, a.fail(ctx, err, MsgUnexpected)
	}
	return n, nil
}

func (a *AuthService) ListCredentials(ctx context.Context) ([]*api.Credential, error) {
	list, err := a.client.ListCredentials(ctx)
	if err != nil {
		return nil, a.fail(ctx, err, MsgUnexpected)
	}
	return list, nil
}

func (a *AuthService) UpdateProfile(ctx context.Context, name string) (*api.User, error) {
	u, err := a.client.UpdateProfile(ctx, name)
	if err != nil {
		return nil, a.fail(ctx, err, "Name must not be empty")
	}
	a.store.UpdateUser(u)
	return u, nil
}

// DeleteAccount deletes the signed-in user; the local session goes with it.
func (a *AuthService) DeleteAccount(ctx context.Context) error {
	if err := a.client.DeleteUser(ctx); err != nil {
		return a.fail(ctx, err, MsgUnexpected)
	}
	a.dropSession(ctx)
	if err := a.tokens.Clear(ctx); err != nil {
		log.Printf("failed to clear local metadata: %v", err)
	}
	return nil
}

func (a *AuthService) RequestEmailVerification(ctx context.Context) error {
	if err := a.client.RequestEmailVerification(ctx); err != nil {
		return a.fail(ctx, err, "Email is already verified")
	}
	return nil
}

func (a *AuthService) VerifyEmail(ctx context.Context, token string) (*api.User, error) {
	u, err := a.client.VerifyEmail(ctx, token)
	if err != nil {
		return nil, normalize(err, "Invalid or expired verification token")
	}
	a.store.UpdateUser(u)
	return u, nil
}

// UploadAvatar sends the file at path to object storage and makes it the
// signed-in user's avatar.
func (a *AuthService) UploadAvatar(ctx context.Context, path string) (*api.User, error) {
	data, err := readFile(path)
	if err != nil {
		log.Printf("read avatar %s: %v", path, err)
		return nil, &Error{Message: "Could not read file"}
	}

	key, url, err := a.client.CreateAvatarUpload(ctx)
	if err != nil {
		return nil, a.fail(ctx, err, MsgUnexpected)
	}

	if err := upload(ctx, url, data, mime.TypeByExtension(filepath.Ext(path))); err != nil {
		log.Printf("avatar upload: %v", err)
		return nil, &Error{Message: "Failed to upload avatar"}
	}

	u, err := a.client.SetAvatar(ctx, key)
	if err != nil {
		return nil, a.fail(ctx, err, MsgUnexpected)
	}
	a.store.UpdateUser(u)
	return u, nil
}

func (a *AuthService) AvatarURL(ctx context.Context) (string, error) {
	url, err := a.client.GetAvatarURL(ctx)
	if err != nil {
		return "", a.fail(ctx, err, MsgUnexpected)
	}
	return url, nil
}

func (a *AuthService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *AuthService) Close() error {
	return a.client.Close()
}
