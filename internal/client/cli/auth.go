package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Input indirections, swapped in tests.
var (
	getSimpleText    = GetSimpleText
	getTextOrDefault = GetTextOrDefault
	getPassword      = GetPassword
)

var errUsage = errors.New("usage")

// report prints the user-facing message of err and returns it.
func (a *App) report(err error) error {
	var se *services.Error
	if errors.As(err, &se) {
		fmt.Fprintln(a.out, se.Message)
	} else {
		fmt.Fprintln(a.out, services.MsgUnexpected)
	}
	return err
}

func (a *App) promptEmail(ctx context.Context) (string, error) {
	return getTextOrDefault(a.reader, "Enter email", a.auth.LastEmail(ctx), a.out)
}

func (a *App) readPassword() (string, error) {
	pw, err := getPassword(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register creates an account with an email and password.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	u, err := a.auth.SignUp(ctx, email, name, password)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Name)
	return nil
}

// RegisterPasskey creates an account whose only usable credential is a
// passkey.
func (a *App) RegisterPasskey(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	res, err := a.auth.SignUpWithPasskey(ctx, email, name)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", res.User.Name)
	if res.Warning != "" {
		fmt.Fprintln(a.out, res.Warning)
	}
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.promptEmail(ctx)
	if err != nil {
		return err
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	u, err := a.auth.SignIn(ctx, email, password)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	return nil
}

// LoginPasskey signs in with a passkey. An empty email lets the
// authenticator pick a discoverable credential.
func (a *App) LoginPasskey(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email (empty for any passkey)", a.out)
	if err != nil {
		return err
	}

	u, err := a.auth.SignInWithPasskey(ctx, email)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.auth.Session().Current()
	if snap.User == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	u := snap.User
	verified := "no"
	if u.EmailVerified {
		verified = "yes"
	}
	fmt.Fprintf(a.out, "ID:       %s\nName:     %s\nEmail:    %s\nVerified: %s\n", u.ID, u.Name, u.Email, verified)
	if u.Image != "" {
		url, err := a.auth.AvatarURL(ctx)
		if err == nil && url != "" {
			fmt.Fprintf(a.out, "Avatar:   %s\n", url)
		}
	}
	if snap.Session != nil {
		fmt.Fprintf(a.out, "Session expires %s\n", snap.Session.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *App) Sessions(ctx context.Context) error {
	list, err := a.auth.ListSessions(ctx)
	if err != nil {
		return a.report(err)
	}
	for _, s := range list {
		mark := " "
		if s.Current {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %s  %-15s  %-20s  expires %s\n",
			mark, s.ID, s.IPAddress, s.UserAgent, s.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) RevokeOthers(ctx context.Context) error {
	n, err := a.auth.RevokeOtherSessions(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Revoked %d session(s)\n", n)
	return nil
}

func (a *App) Passkeys(ctx context.Context) error {
	list, err := a.auth.ListCredentials(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No credentials")
	}
	for _, c := range list {
		fmt.Fprintf(a.out, "%s  %-8s  %s  added %s\n", c.ID, c.Provider, c.Name, c.CreatedAt.Local().Format(time.DateOnly))
	}
	return nil
}

func (a *App) AddPasskey(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Passkey name (optional)", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.AddPasskey(ctx, name); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Passkey added")
	return nil
}

func (a *App) Rename(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter new name", a.out)
	if err != nil {
		return err
	}
	u, err := a.auth.UpdateProfile(ctx, name)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Name changed to %s\n", u.Name)
	return nil
}

// VerifyEmail with no token asks the server to send one; with a token it
// redeems it.
func (a *App) VerifyEmail(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if err := a.auth.RequestEmailVerification(ctx); err != nil {
			return a.report(err)
		}
		fmt.Fprintln(a.out, "Verification email sent. Run verify-email <token> once it arrives.")
		return nil
	}

	if _, err := a.auth.VerifyEmail(ctx, args[0]); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Email verified")
	return nil
}

func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: avatar <path>")
		return errUsage
	}
	if _, err := a.auth.UploadAvatar(ctx, strings.Join(args, " ")); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Avatar updated")
	return nil
}

func (a *App) DeleteAccount(ctx context.Context) error {
	ok, err := Confirm(a.reader, "This removes your account, sessions and passkeys", "DELETE", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := a.auth.DeleteAccount(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}
