package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errCancelled = errors.New("passkey ceremony cancelled")

// terminalAuthenticator hands the ceremony options to the user and reads
// back the authenticator response pasted as a single JSON line, e.g. from a
// browser helper or a hardware key tool.
type terminalAuthenticator struct {
	reader *bufio.Reader
	out    io.Writer
}

func newTerminalAuthenticator(reader *bufio.Reader, out io.Writer) *terminalAuthenticator {
	return &terminalAuthenticator{reader: reader, out: out}
}

func (t *terminalAuthenticator) Create(ctx context.Context, options json.RawMessage) (json.RawMessage, error) {
	return t.ceremony(ctx, "Passkey creation options", options)
}

func (t *terminalAuthenticator) Get(ctx context.Context, options json.RawMessage) (json.RawMessage, error) {
	return t.ceremony(ctx, "Passkey request options", options)
}

func (t *terminalAuthenticator) ceremony(ctx context.Context, title string, options json.RawMessage) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(t.out, "%s:\n%s\n", title, options); err != nil {
		return nil, err
	}

	line, err := GetSimpleText(t.reader, "Paste the authenticator response (empty to cancel)", t.out)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, errCancelled
	}
	if !json.Valid([]byte(line)) {
		return nil, fmt.Errorf("authenticator response is not valid JSON")
	}
	return json.RawMessage(line), nil
}
