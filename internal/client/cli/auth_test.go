package cli

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	t.Cleanup(func() { getPassword = old })
	getPassword = func(w io.Writer) ([]byte, error) { return []byte(pw), nil }
}

func TestRegister(t *testing.T) {
	stubPassword(t, "correct horse")
	a, fa, out := newTestApp("alice@example.com\nAlice\n")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "alice@example.com", fa.gotEmail)
	assert.Equal(t, "Alice", fa.gotName)
	assert.Equal(t, "correct horse", fa.gotPassword)
	assert.Contains(t, out.String(), "Welcome, Alice!")
}

func TestRegister_ReportsServiceError(t *testing.T) {
	stubPassword(t, "correct horse")
	a, fa, out := newTestApp("alice@example.com\nAlice\n")
	fa.errs["SignUp"] = &services.Error{Message: services.MsgDuplicateEmail}

	err := a.Register(context.Background())
	require.Error(t, err)
	assert.Contains(t, out.String(), services.MsgDuplicateEmail)
}

func TestRegister_InputEOF(t *testing.T) {
	a, fa, _ := newTestApp("")
	require.Error(t, a.Register(context.Background()))
	assert.Empty(t, fa.calls)
}

func TestRegisterPasskey_Warning(t *testing.T) {
	a, fa, out := newTestApp("bob@example.com\nBob\n")
	fa.signUpRes = &services.SignUpResult{
		User:    &api.User{Name: "Bob"},
		Warning: services.MsgPasskeySignUpWarned,
	}

	require.NoError(t, a.RegisterPasskey(context.Background()))
	assert.Contains(t, out.String(), "Welcome, Bob!")
	assert.Contains(t, out.String(), services.MsgPasskeySignUpWarned)
}

func TestLogin_DefaultsToLastEmail(t *testing.T) {
	stubPassword(t, "pw")
	a, fa, out := newTestApp("\n")
	fa.lastEmail = "remembered@example.com"

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "remembered@example.com", fa.gotEmail)
	assert.Contains(t, out.String(), "[remembered@example.com]")
	assert.Contains(t, out.String(), "Signed in as remembered@example.com")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	stubPassword(t, "pw")
	a, fa, out := newTestApp("a@example.com\n")
	fa.errs["SignIn"] = &services.Error{Message: services.MsgInvalidCredentials}

	require.Error(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), services.MsgInvalidCredentials)
}

func TestLoginPasskey_EmptyEmail(t *testing.T) {
	a, fa, out := newTestApp("\n")

	require.NoError(t, a.LoginPasskey(context.Background()))
	assert.Equal(t, "", fa.gotEmail)
	assert.Contains(t, out.String(), "Signed in as alice@example.com")
}

func TestReport_UnknownError(t *testing.T) {
	a, _, out := newTestApp("")
	assert.ErrorIs(t, a.report(errBoom), errBoom)
	assert.Equal(t, services.MsgUnexpected+"\n", out.String())
}

func TestLogout(t *testing.T) {
	a, fa, out := newTestApp("")
	require.NoError(t, a.Logout(context.Background()))
	assert.Equal(t, []string{"SignOut"}, fa.calls)
	assert.Contains(t, out.String(), "Signed out")
}

func TestWhoAmI(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		a, _, out := newTestApp("")
		require.NoError(t, a.WhoAmI(context.Background()))
		assert.Equal(t, "Not signed in\n", out.String())
	})

	t.Run("signed in with avatar", func(t *testing.T) {
		a, fa, out := newTestApp("")
		fa.avatarURL = "https://cdn.example.com/a.png"
		fa.store.SetAuthenticated(
			&api.User{ID: "u1", Name: "Alice", Email: "alice@example.com", EmailVerified: true, Image: "avatars/u1"},
			&api.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)},
		)

		require.NoError(t, a.WhoAmI(context.Background()))
		s := out.String()
		assert.Contains(t, s, "alice@example.com")
		assert.Contains(t, s, "Verified: yes")
		assert.Contains(t, s, "https://cdn.example.com/a.png")
		assert.Contains(t, s, "Session expires")
	})
}

func TestSessions_MarksCurrent(t *testing.T) {
	a, fa, out := newTestApp("")
	fa.sessions = []*api.Session{
		{ID: "s-current", Current: true, ExpiresAt: time.Now()},
		{ID: "s-other", ExpiresAt: time.Now()},
	}

	require.NoError(t, a.Sessions(context.Background()))
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("* s-current")))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("  s-other")))
}

func TestSessions_Error(t *testing.T) {
	a, fa, out := newTestApp("")
	fa.errs["ListSessions"] = &services.Error{Message: services.MsgSessionExpired}
	require.Error(t, a.Sessions(context.Background()))
	assert.Contains(t, out.String(), services.MsgSessionExpired)
}

func TestRevokeOthers(t *testing.T) {
	a, fa, out := newTestApp("")
	fa.revoked = 3
	require.NoError(t, a.RevokeOthers(context.Background()))
	assert.Contains(t, out.String(), "Revoked 3 session(s)")
}

func TestPasskeys(t *testing.T) {
	a, fa, out := newTestApp("")
	require.NoError(t, a.Passkeys(context.Background()))
	assert.Contains(t, out.String(), "No credentials")

	out.Reset()
	fa.creds = []*api.Credential{{ID: "c1", Provider: "passkey", Name: "laptop", CreatedAt: time.Now()}}
	require.NoError(t, a.Passkeys(context.Background()))
	assert.Contains(t, out.String(), "laptop")
}

func TestAddPasskey(t *testing.T) {
	a, fa, out := newTestApp("yubikey\n")
	require.NoError(t, a.AddPasskey(context.Background()))
	assert.Equal(t, "yubikey", fa.gotName)
	assert.Contains(t, out.String(), "Passkey added")
}

func TestRename(t *testing.T) {
	a, fa, out := newTestApp("Alicia\n")
	require.NoError(t, a.Rename(context.Background()))
	assert.Equal(t, "Alicia", fa.gotName)
	assert.Contains(t, out.String(), "Name changed to Alicia")
}

func TestVerifyEmail(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		a, fa, out := newTestApp("")
		require.NoError(t, a.VerifyEmail(context.Background(), nil))
		assert.Equal(t, []string{"RequestEmailVerification"}, fa.calls)
		assert.Contains(t, out.String(), "Verification email sent")
	})

	t.Run("redeem", func(t *testing.T) {
		a, fa, out := newTestApp("")
		require.NoError(t, a.VerifyEmail(context.Background(), []string{"tok123"}))
		assert.Equal(t, "tok123", fa.gotToken)
		assert.Contains(t, out.String(), "Email verified")
	})
}

func TestAvatar(t *testing.T) {
	t.Run("usage", func(t *testing.T) {
		a, fa, out := newTestApp("")
		assert.ErrorIs(t, a.Avatar(context.Background(), nil), errUsage)
		assert.Empty(t, fa.calls)
		assert.Contains(t, out.String(), "Usage: avatar <path>")
	})

	t.Run("path with spaces", func(t *testing.T) {
		a, fa, out := newTestApp("")
		require.NoError(t, a.Avatar(context.Background(), []string{"my", "face.png"}))
		assert.Equal(t, "my face.png", fa.gotPath)
		assert.Contains(t, out.String(), "Avatar updated")
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		a, fa, out := newTestApp("no\n")
		require.NoError(t, a.DeleteAccount(context.Background()))
		assert.Empty(t, fa.calls)
		assert.Contains(t, out.String(), "Cancelled")
	})

	t.Run("confirmed", func(t *testing.T) {
		a, fa, out := newTestApp("DELETE\n")
		require.NoError(t, a.DeleteAccount(context.Background()))
		assert.Equal(t, []string{"DeleteAccount"}, fa.calls)
		assert.Contains(t, out.String(), "Account deleted")
	})
}
