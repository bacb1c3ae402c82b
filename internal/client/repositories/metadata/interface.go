// Package metadata is the CLI's local key/value store. It keeps the session
// token between runs so the client can resume a session on start.
package metadata

import "context"

const (
	KeySessionToken = "session_token"
	KeyEmail        = "email"
)

// Repository reads and writes string values by key. Get reports
// common.ErrorNotFound for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
