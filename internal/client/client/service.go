package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/gophauth/internal/api"
)

// Client is the transport contract the auth façade depends on.
type Client interface {
	Close() error
	SetToken(token string)
	Token() string

	Ping(ctx context.Context) error
	SignUp(ctx context.Context, email, name, password string) (*api.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*api.AuthResponse, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*api.AuthResponse, error)
	ListSessions(ctx context.Context) ([]*api.Session, error)
	RevokeOtherSessions(ctx context.Context) (int64, error)
	DeleteUser(ctx context.Context) error
	UpdateProfile(ctx context.Context, name string) (*api.User, error)
	ListCredentials(ctx context.Context) ([]*api.Credential, error)

	BeginPasskeyRegistration(ctx context.Context) (*api.CeremonyResponse, error)
	FinishPasskeyRegistration(ctx context.Context, handle string, response json.RawMessage, name string) error
	BeginPasskeyLogin(ctx context.Context, email string) (*api.CeremonyResponse, error)
	FinishPasskeyLogin(ctx context.Context, handle string, response json.RawMessage) (*api.AuthResponse, error)

	RequestEmailVerification(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) (*api.User, error)

	CreateAvatarUpload(ctx context.Context) (key, url string, err error)
	SetAvatar(ctx context.Context, key string) (*api.User, error)
	GetAvatarURL(ctx context.Context) (string, error)
}
