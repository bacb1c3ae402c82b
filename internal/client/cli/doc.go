// Package cli is the interactive gophauth command-line client.
//
// On start it resumes the stored session, if any, then runs a REPL. A
// background watcher pings the server and retries resolving the session
// while it is still pending; another logs every session state change,
// including revocations noticed by any command.
//
// Commands:
//
//	register, register-passkey, login, login-passkey, logout
//	whoami, sessions, revoke-others, passkeys, add-passkey, rename
//	verify-email [token], avatar <path>, delete-account, help, exit
package cli
