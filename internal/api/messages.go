package api

import (
	"encoding/json"
	"time"
)

// Empty is used where a call takes or returns nothing.
type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Current   bool      `json:"current,omitempty"`
}

// Credential describes a linked sign-in method without its secret.
type Credential struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the user and, after sign-up or sign-in, the new
// session including its token.
type AuthResponse struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type ListSessionsResponse struct {
	Sessions []*Session `json:"sessions"`
}

type RevokeOtherSessionsResponse struct {
	Revoked int64 `json:"revoked"`
}

type ListCredentialsResponse struct {
	Credentials []*Credential `json:"credentials"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// CeremonyResponse is the first half of a passkey exchange. Options is
// handed to the authenticator verbatim.
type CeremonyResponse struct {
	Handle  string          `json:"handle"`
	Options json.RawMessage `json:"options"`
}

type BeginPasskeyLoginRequest struct {
	Email string `json:"email,omitempty"`
}

type FinishPasskeyRegistrationRequest struct {
	Handle   string          `json:"handle"`
	Response json.RawMessage `json:"response"`
	Name     string          `json:"name,omitempty"`
}

type FinishPasskeyLoginRequest struct {
	Handle   string          `json:"handle"`
	Response json.RawMessage `json:"response"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type CreateAvatarUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type SetAvatarRequest struct {
	Key string `json:"key"`
}

type GetAvatarURLResponse struct {
	URL string `json:"url"`
}
