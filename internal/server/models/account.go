package models

import "time"

// Account binds a user to one authentication method instance.
//
// For ProviderID "password" the Password field holds the encoded hash and
// AccountID equals the user id. For "passkey" AccountID is the base64url
// credential id and Credential the JSON-encoded public key credential.
type Account struct {
	ID           string
	AccountID    string
	ProviderID   string
	UserID       string
	Name         string
	AccessToken  string
	RefreshToken string
	Scope        string
	Password     string
	Credential   string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
