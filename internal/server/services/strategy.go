// Package services contains the server-side identity logic: session
// issuance and validation, the pluggable credential strategies, and the
// sign-up / sign-in orchestration built on top of them.
package services

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Credential is the input a Strategy registers or verifies.
type Credential interface {
	Provider() string
}

// PasswordCredential carries an email/password pair. Email is ignored on
// Register, where the user is already known.
type PasswordCredential struct {
	Email    string
	Password string
}

func (PasswordCredential) Provider() string { return common.ProviderPassword }

// PasskeyCredential carries the ceremony handle returned by a Begin call and
// the authenticator's JSON response. Name labels a newly registered passkey.
type PasskeyCredential struct {
	Handle   string
	Response []byte
	Name     string
}

func (PasskeyCredential) Provider() string { return common.ProviderPasskey }

// Strategy is one authentication method.
//
// Register binds cred to user as a new Account written through db, which
// may be a transaction. Verify checks cred and returns the user it proves.
// Verify fails with common.ErrInvalidCredentials on any mismatch.
type Strategy interface {
	Provider() string
	Register(ctx context.Context, db dbx.DBTX, user *models.User, cred Credential) error
	Verify(ctx context.Context, cred Credential) (*models.User, error)
}
