package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{"too short", "short", true},
		{"min length", "12345678", false},
		{"max length", strings.Repeat("a", common.MaxPasswordLength), false},
		{"too long", strings.Repeat("a", common.MaxPasswordLength+1), true},
		{"multibyte counts runes", strings.Repeat("ж", 8), false},
		{"empty", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.pw)
			if tc.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordStrategy_RegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewPasswordStrategy(nil, store)
	u := seedUser(t, store, "alice@example.com")

	require.NoError(t, p.Register(ctx, nil, u, PasswordCredential{Password: "correct horse"}))

	list := store.accountsOf(u.ID)
	require.Len(t, list, 1)
	assert.Equal(t, common.ProviderPassword, list[0].ProviderID)
	assert.Equal(t, u.ID, list[0].AccountID)
	assert.NotContains(t, list[0].Password, "correct horse")
	assert.True(t, strings.HasPrefix(list[0].Password, "$argon2id$"))

	got, err := p.Verify(ctx, PasswordCredential{Email: "  Alice@Example.COM ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestPasswordStrategy_Register_Twice(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewPasswordStrategy(nil, store)
	u := seedUser(t, store, "alice@example.com")

	require.NoError(t, p.Register(ctx, nil, u, PasswordCredential{Password: "password-1"}))
	err := p.Register(ctx, nil, u, PasswordCredential{Password: "password-2"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestPasswordStrategy_Register_Rejects(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewPasswordStrategy(nil, store)
	u := seedUser(t, store, "alice@example.com")

	assert.ErrorIs(t, p.Register(ctx, nil, u, PasswordCredential{Password: "short"}), common.ErrValidation)
	assert.ErrorIs(t, p.Register(ctx, nil, u, PasskeyCredential{}), common.ErrValidation)
	assert.Empty(t, store.accountsOf(u.ID))
}

func TestPasswordStrategy_Verify_UniformFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewPasswordStrategy(nil, store)
	u := seedUser(t, store, "alice@example.com")
	require.NoError(t, p.Register(ctx, nil, u, PasswordCredential{Password: "correct horse"}))
	seedUser(t, store, "nopass@example.com")

	cases := []struct {
		name string
		cred Credential
	}{
		{"wrong password", PasswordCredential{Email: "alice@example.com", Password: "wrong horse"}},
		{"unknown email", PasswordCredential{Email: "ghost@example.com", Password: "correct horse"}},
		{"user without password", PasswordCredential{Email: "nopass@example.com", Password: "correct horse"}},
		{"wrong credential type", PasskeyCredential{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Verify(ctx, tc.cred)
			require.ErrorIs(t, err, common.ErrInvalidCredentials)
			assert.Equal(t, common.ErrInvalidCredentials.Error(), err.Error())
		})
	}
}

func TestPasswordStrategy_Verify_MalformedHash(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewPasswordStrategy(nil, store)
	u := seedUser(t, store, "alice@example.com")
	require.NoError(t, p.Register(ctx, nil, u, PasswordCredential{Password: "correct horse"}))

	for _, a := range store.accounts {
		a.Password = "not-a-hash"
	}

	_, err := p.Verify(ctx, PasswordCredential{Email: "alice@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestPasswordStrategy_Verify_StoreError(t *testing.T) {
	store := newMemStore()
	store.fail["users.GetByEmail"] = common.ErrStoreUnavailable
	p := NewPasswordStrategy(nil, store)

	_, err := p.Verify(context.Background(), PasswordCredential{Email: "a@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}
