package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	RegisterPasskey(ctx context.Context) error
	Login(ctx context.Context) error
	LoginPasskey(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Sessions(ctx context.Context) error
	RevokeOthers(ctx context.Context) error
	Passkeys(ctx context.Context) error
	AddPasskey(ctx context.Context) error
	Rename(ctx context.Context) error
	VerifyEmail(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: register, register-passkey, login, login-passkey, exit"
	helpSignedIn  = "Available commands: whoami, sessions, revoke-others, passkeys, add-passkey, rename, verify-email [token], avatar <path>, delete-account, logout, exit"
)

// runREPL reads commands from reader until EOF, exit or quit. Handlers
// report their own errors, so the loop ignores them. Prompts inside the
// handlers share the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("gauth %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "register-passkey":
			_ = a.RegisterPasskey(ctx)

		case "login":
			_ = a.Login(ctx)

		case "login-passkey":
			_ = a.LoginPasskey(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "sessions":
			_ = a.Sessions(ctx)

		case "revoke-others":
			_ = a.RevokeOthers(ctx)

		case "passkeys":
			_ = a.Passkeys(ctx)

		case "add-passkey":
			_ = a.AddPasskey(ctx)

		case "rename":
			_ = a.Rename(ctx)

		case "verify-email":
			_ = a.VerifyEmail(ctx, args)

		case "avatar":
			_ = a.Avatar(ctx, args)

		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
