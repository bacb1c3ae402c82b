package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

const (
	registrationPrefix = "passkey-registration:"
	loginPrefix        = "passkey-login:"
)

// ErrPasskeyCloned rejects an assertion whose signature counter did not
// advance past the stored one, a sign that the authenticator was copied.
var ErrPasskeyCloned = fmt.Errorf("%w: passkey signature counter regressed", common.ErrInvalidCredentials)

// Ceremony is the first half of a passkey exchange: options for the
// authenticator and the handle the client sends back with its response.
type Ceremony struct {
	Handle  string
	Options []byte
}

type passkeyProvider interface {
	BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	CreateCredential(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
	BeginLogin(user webauthn.User, opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	BeginDiscoverableLogin(opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	ValidateLogin(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error)
	ValidatePasskeyLogin(handler webauthn.DiscoverableUserHandler, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (webauthn.User, *webauthn.Credential, error)
}

type passkeyParser interface {
	ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error)
	ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error)
}

type defaultPasskeyParser struct{}

func (defaultPasskeyParser) ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error) {
	return protocol.ParseCredentialCreationResponseBytes(data)
}

func (defaultPasskeyParser) ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error) {
	return protocol.ParseCredentialRequestResponseBytes(data)
}

// PasskeyStrategy runs WebAuthn ceremonies against one relying party.
// Outstanding challenges live in Verification rows for ttl and are consumed
// on first use, whatever the outcome.
type PasskeyStrategy struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	webauthn passkeyProvider
	parser   passkeyParser
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewPasskeyStrategy(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config) (*PasskeyStrategy, error) {
	w, err := webauthn.New(&webauthn.Config{
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn config: %w", err)
	}
	return &PasskeyStrategy{
		db:       db,
		repos:    repos,
		webauthn: w,
		parser:   defaultPasskeyParser{},
		secret:   []byte(cfg.SecretKey),
		ttl:      cfg.PasskeyChallengeTTL,
		now:      time.Now,
	}, nil
}

func (p *PasskeyStrategy) Provider() string { return common.ProviderPasskey }

// BeginRegistration starts adding a passkey to an existing user. Passkeys
// the user already holds are excluded so an authenticator is not enrolled twice.
func (p *PasskeyStrategy) BeginRegistration(ctx context.Context, user *models.User) (*Ceremony, error) {
	pu, err := p.loadUser(ctx, p.db, user)
	if err != nil {
		return nil, err
	}

	opts := []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementPreferred),
	}
	if len(pu.credentials) > 0 {
		opts = append(opts, webauthn.WithExclusions(webauthn.Credentials(pu.credentials).CredentialDescriptors()))
	}

	creation, session, err := p.webauthn.BeginRegistration(pu, opts...)
	if err != nil {
		return nil, fmt.Errorf("begin passkey registration: %w", err)
	}
	return p.startCeremony(ctx, auth.KindRegistration, registrationPrefix, user.ID, session, creation)
}

// Register finishes a registration ceremony and stores the credential as a
// passkey Account of user.
func (p *PasskeyStrategy) Register(ctx context.Context, db dbx.DBTX, user *models.User, cred Credential) error {
	pc, ok := cred.(PasskeyCredential)
	if !ok {
		return fmt.Errorf("%w: expected passkey credential", common.ErrValidation)
	}

	claims, session, err := p.finishCeremony(ctx, pc.Handle, auth.KindRegistration)
	if err != nil {
		return err
	}
	if claims.UserID != user.ID {
		return common.ErrInvalidCredentials
	}

	pu, err := p.loadUser(ctx, db, user)
	if err != nil {
		return err
	}

	parsed, err := p.parser.ParseCredentialCreationResponseBytes(pc.Response)
	if err != nil {
		return fmt.Errorf("%w: parse attestation: %v", common.ErrInvalidCredentials, err)
	}
	credential, err := p.webauthn.CreateCredential(pu, *session, parsed)
	if err != nil {
		return fmt.Errorf("%w: attestation: %v", common.ErrInvalidCredentials, err)
	}

	payload, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	err = p.repos.Accounts(db).Create(ctx, &models.Account{
		AccountID:  encodeCredentialID(credential.ID),
		ProviderID: common.ProviderPasskey,
		UserID:     user.ID,
		Name:       pc.Name,
		Credential: string(payload),
	})
	if err != nil {
		if errors.Is(err, accounts.ErrAlreadyLinked) {
			return fmt.Errorf("%w: passkey already registered", common.ErrValidation)
		}
		return fmt.Errorf("store passkey: %w", err)
	}
	return nil
}

// BeginLogin starts an assertion ceremony. With an email of a user holding
// passkeys the allowed credentials are listed; otherwise the ceremony is
// discoverable and the authenticator picks the account. Unknown emails are
// not reported.
func (p *PasskeyStrategy) BeginLogin(ctx context.Context, email string) (*Ceremony, error) {
	var pu *passkeyUser

	if email != "" {
		user, err := p.repos.Users(p.db).GetByEmail(ctx, common.NormalizeEmail(email))
		switch {
		case err == nil:
			pu, err = p.loadUser(ctx, p.db, user)
			if err != nil {
				return nil, err
			}
			if len(pu.credentials) == 0 {
				pu = nil
			}
		case !errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("lookup user: %w", err)
		}
	}

	var (
		assertion *protocol.CredentialAssertion
		session   *webauthn.SessionData
		err       error
		userID    string
	)
	if pu != nil {
		userID = pu.user.ID
		assertion, session, err = p.webauthn.BeginLogin(pu)
	} else {
		assertion, session, err = p.webauthn.BeginDiscoverableLogin()
	}
	if err != nil {
		return nil, fmt.Errorf("begin passkey login: %w", err)
	}

	return p.startCeremony(ctx, auth.KindLogin, loginPrefix, userID, session, assertion)
}

// Verify finishes an assertion ceremony, records the new signature counter
// and returns the authenticated user.
func (p *PasskeyStrategy) Verify(ctx context.Context, cred Credential) (*models.User, error) {
	pc, ok := cred.(PasskeyCredential)
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	claims, session, err := p.finishCeremony(ctx, pc.Handle, auth.KindLogin)
	if err != nil {
		return nil, err
	}

	parsed, err := p.parser.ParseCredentialRequestResponseBytes(pc.Response)
	if err != nil {
		return nil, fmt.Errorf("%w: parse assertion: %v", common.ErrInvalidCredentials, err)
	}

	var (
		pu         *passkeyUser
		credential *webauthn.Credential
	)
	if claims.UserID != "" {
		user, err := p.repos.Users(p.db).GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidCredentials
			}
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		if pu, err = p.loadUser(ctx, p.db, user); err != nil {
			return nil, err
		}
		if credential, err = p.webauthn.ValidateLogin(pu, *session, parsed); err != nil {
			return nil, fmt.Errorf("%w: assertion: %v", common.ErrInvalidCredentials, err)
		}
	} else {
		validated, c, err := p.webauthn.ValidatePasskeyLogin(p.userHandler(ctx), *session, parsed)
		if err != nil {
			return nil, fmt.Errorf("%w: assertion: %v", common.ErrInvalidCredentials, err)
		}
		var typed bool
		if pu, typed = validated.(*passkeyUser); !typed {
			return nil, fmt.Errorf("%w: passkey user type mismatch", common.ErrorInternal)
		}
		credential = c
	}

	if credential.Authenticator.CloneWarning {
		return nil, ErrPasskeyCloned
	}

	if err := p.storeSignCount(ctx, credential); err != nil {
		return nil, err
	}
	return pu.user, nil
}

func (p *PasskeyStrategy) startCeremony(ctx context.Context, kind, prefix, userID string, session *webauthn.SessionData, options any) (*Ceremony, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: empty webauthn session", common.ErrorInternal)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode webauthn session: %w", err)
	}

	identifier := prefix + uuid.NewString()
	now := p.now()
	expiresAt := now.Add(p.ttl)
	err = p.repos.Verifications(p.db).Create(ctx, &models.Verification{
		Identifier: identifier,
		Value:      string(payload),
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}

	handle, err := auth.GenerateCeremonyHandle(kind, identifier, userID, p.secret, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign ceremony handle: %w", err)
	}

	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode ceremony options: %w", err)
	}
	return &Ceremony{Handle: handle, Options: optionsJSON}, nil
}

// finishCeremony verifies the handle and consumes its Verification record.
// The record is gone after this call whether or not the ceremony succeeds.
func (p *PasskeyStrategy) finishCeremony(ctx context.Context, handle, kind string) (*auth.CeremonyClaims, *webauthn.SessionData, error) {
	now := p.now()
	claims, err := auth.ParseCeremonyHandle(handle, kind, p.secret, now)
	if err != nil {
		return nil, nil, err
	}

	v, err := p.repos.Verifications(p.db).Consume(ctx, claims.Identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrChallengeExpired
		}
		return nil, nil, fmt.Errorf("load challenge: %w", err)
	}
	if v.Expired(now) {
		return nil, nil, common.ErrChallengeExpired
	}

	var session webauthn.SessionData
	if err := json.Unmarshal([]byte(v.Value), &session); err != nil {
		return nil, nil, fmt.Errorf("%w: decode challenge: %v", common.ErrorInternal, err)
	}
	return claims, &session, nil
}

func (p *PasskeyStrategy) storeSignCount(ctx context.Context, credential *webauthn.Credential) error {
	repo := p.repos.Accounts(p.db)

	account, err := repo.GetByProvider(ctx, common.ProviderPasskey, encodeCredentialID(credential.ID))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCredentials
		}
		return fmt.Errorf("lookup passkey: %w", err)
	}

	payload, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := repo.UpdateCredential(ctx, account.ID, string(payload)); err != nil {
		return fmt.Errorf("update passkey: %w", err)
	}
	return nil
}

func (p *PasskeyStrategy) userHandler(ctx context.Context) webauthn.DiscoverableUserHandler {
	return func(_, userHandle []byte) (webauthn.User, error) {
		if len(userHandle) == 0 {
			return nil, errors.New("user handle is required")
		}
		user, err := p.repos.Users(p.db).GetByID(ctx, string(userHandle))
		if err != nil {
			return nil, err
		}
		return p.loadUser(ctx, p.db, user)
	}
}

func (p *PasskeyStrategy) loadUser(ctx context.Context, db dbx.DBTX, user *models.User) (*passkeyUser, error) {
	list, err := p.repos.Accounts(db).ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	pu := &passkeyUser{user: user}
	for _, a := range list {
		if a.ProviderID != common.ProviderPasskey {
			continue
		}
		var c webauthn.Credential
		if err := json.Unmarshal([]byte(a.Credential), &c); err != nil {
			return nil, fmt.Errorf("decode credential %s: %w", a.AccountID, err)
		}
		pu.credentials = append(pu.credentials, c)
	}
	return pu, nil
}

type passkeyUser struct {
	user        *models.User
	credentials []webauthn.Credential
}

func (u *passkeyUser) WebAuthnID() []byte {
	return []byte(u.user.ID)
}

func (u *passkeyUser) WebAuthnName() string {
	return u.user.Email
}

func (u *passkeyUser) WebAuthnDisplayName() string {
	if u.user.Name != "" {
		return u.user.Name
	}
	return u.user.Email
}

func (u *passkeyUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

func encodeCredentialID(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}
