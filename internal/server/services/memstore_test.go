package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/verifications"
	"github.com/google/uuid"
)

// memStore is an in-memory RepositoryManager. It ignores the DBTX it is
// handed, so transaction rollback is not emulated; tests assert the
// rollback on the sqlmock side instead.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	sessions      map[string]*models.Session
	accounts      map[string]*models.Account
	verifications []*models.Verification

	// fail makes the named operation ("users.Create", ...) return the error.
	fail map[string]error
	// collisions makes the next n sessions.Create calls report a token clash.
	collisions int
	seq        int
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		sessions: map[string]*models.Session{},
		accounts: map[string]*models.Account{},
		fail:     map[string]error{},
	}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *memStore) Users(dbx.DBTX) users.Repository { return memUsers{m} }

func (m *memStore) Sessions(dbx.DBTX) sessions.Repository { return memSessions{m} }

func (m *memStore) Accounts(dbx.DBTX) accounts.Repository { return memAccounts{m} }

func (m *memStore) Verifications(dbx.DBTX) verifications.Repository { return memVerifications{m} }

func (m *memStore) failure(op string) error {
	return m.fail[op]
}

// tick returns strictly increasing timestamps so ordering by creation is stable.
func (m *memStore) tick() time.Time {
	m.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Millisecond)
}

func (m *memStore) sessionCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

func (m *memStore) accountsOf(userID string) []*models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	return out
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("users.Create"); err != nil {
		return err
	}
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return common.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = r.m.tick()
	u.UpdatedAt = u.CreatedAt
	c := *u
	r.m.users[u.ID] = &c
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range r.m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) update(id string, fn func(*models.User)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	u.UpdatedAt = r.m.tick()
	return nil
}

func (r memUsers) UpdateName(_ context.Context, id, name string) error {
	return r.update(id, func(u *models.User) { u.Name = name })
}

func (r memUsers) SetImage(_ context.Context, id, image string) error {
	return r.update(id, func(u *models.User) { u.Image = image })
}

func (r memUsers) SetEmailVerified(_ context.Context, id string, verified bool) error {
	return r.update(id, func(u *models.User) { u.EmailVerified = verified })
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.users, id)
	for token, s := range r.m.sessions {
		if s.UserID == id {
			delete(r.m.sessions, token)
		}
	}
	for key, a := range r.m.accounts {
		if a.UserID == id {
			delete(r.m.accounts, key)
		}
	}
	return nil
}

type memSessions struct{ m *memStore }

func (r memSessions) Create(_ context.Context, s *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("sessions.Create"); err != nil {
		return err
	}
	if r.m.collisions > 0 {
		r.m.collisions--
		return sessions.ErrTokenCollision
	}
	if _, ok := r.m.sessions[s.Token]; ok {
		return sessions.ErrTokenCollision
	}
	if _, ok := r.m.users[s.UserID]; !ok {
		return common.ErrorNotFound
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = r.m.tick()
	s.UpdatedAt = s.CreatedAt
	c := *s
	r.m.sessions[s.Token] = &c
	return nil
}

func (r memSessions) GetByToken(_ context.Context, token string) (*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("sessions.GetByToken"); err != nil {
		return nil, err
	}
	s, ok := r.m.sessions[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	return &c, nil
}

func (r memSessions) ListByUser(_ context.Context, userID string, now time.Time) ([]*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Session
	for _, s := range r.m.sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memSessions) Delete(_ context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("sessions.Delete"); err != nil {
		return err
	}
	delete(r.m.sessions, token)
	return nil
}

func (r memSessions) DeleteByUser(_ context.Context, userID, keepToken string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for token, s := range r.m.sessions {
		if s.UserID == userID && token != keepToken {
			delete(r.m.sessions, token)
			n++
		}
	}
	return n, nil
}

func (r memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("sessions.DeleteExpired"); err != nil {
		return 0, err
	}
	var n int64
	for token, s := range r.m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(r.m.sessions, token)
			n++
		}
	}
	return n, nil
}

type memAccounts struct{ m *memStore }

func accountKey(providerID, accountID string) string {
	return providerID + "|" + accountID
}

func (r memAccounts) Create(_ context.Context, a *models.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("accounts.Create"); err != nil {
		return err
	}
	key := accountKey(a.ProviderID, a.AccountID)
	if _, ok := r.m.accounts[key]; ok {
		return accounts.ErrAlreadyLinked
	}
	if _, ok := r.m.users[a.UserID]; !ok {
		return common.ErrorNotFound
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = r.m.tick()
	a.UpdatedAt = a.CreatedAt
	c := *a
	r.m.accounts[key] = &c
	return nil
}

func (r memAccounts) GetByProvider(_ context.Context, providerID, accountID string) (*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.accounts[accountKey(providerID, accountID)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

func (r memAccounts) GetByUserAndProvider(_ context.Context, userID, providerID string) (*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var found *models.Account
	for _, a := range r.m.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			if found == nil || a.CreatedAt.Before(found.CreatedAt) {
				found = a
			}
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	c := *found
	return &c, nil
}

func (r memAccounts) ListByUser(_ context.Context, userID string) ([]*models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("accounts.ListByUser"); err != nil {
		return nil, err
	}
	var out []*models.Account
	for _, a := range r.m.accounts {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memAccounts) UpdateCredential(_ context.Context, id, credential string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.accounts {
		if a.ID == id {
			a.Credential = credential
			a.UpdatedAt = r.m.tick()
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r memAccounts) Delete(_ context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for key, a := range r.m.accounts {
		if a.ID == id && a.UserID == userID {
			delete(r.m.accounts, key)
			return nil
		}
	}
	return common.ErrorNotFound
}

type memVerifications struct{ m *memStore }

func (r memVerifications) Create(_ context.Context, v *models.Verification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("verifications.Create"); err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt = r.m.tick()
	v.UpdatedAt = v.CreatedAt
	c := *v
	r.m.verifications = append(r.m.verifications, &c)
	return nil
}

func (r memVerifications) GetByIdentifier(_ context.Context, identifier string) (*models.Verification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := len(r.m.verifications) - 1; i >= 0; i-- {
		if v := r.m.verifications[i]; v.Identifier == identifier {
			c := *v
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memVerifications) Consume(_ context.Context, identifier string) (*models.Verification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := len(r.m.verifications) - 1; i >= 0; i-- {
		if v := r.m.verifications[i]; v.Identifier == identifier {
			r.m.verifications = append(r.m.verifications[:i], r.m.verifications[i+1:]...)
			return v, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memVerifications) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("verifications.DeleteExpired"); err != nil {
		return 0, err
	}
	kept := r.m.verifications[:0]
	var n int64
	for _, v := range r.m.verifications {
		if v.ExpiresAt.After(now) {
			kept = append(kept, v)
			continue
		}
		n++
	}
	r.m.verifications = kept
	return n, nil
}
