// Package client is the CLI's transport to the auth server.
//
// GRPCClient speaks the AuthService over gRPC with the JSON codec. It keeps
// the current session token and attaches it, together with the client's user
// agent, to every outgoing call as metadata. Status codes coming back are
// mapped onto the sentinels in internal/common so callers can match them
// with errors.Is.
//
// InitDatabase and RunMigrations bootstrap the local SQLite database used to
// persist the session token between runs.
package client
