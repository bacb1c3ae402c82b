package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

func (a *App) getStatus() string {
	s := ""
	snap := a.auth.Session().Current()
	switch {
	case snap.State == session.StateAuthenticated && snap.User != nil:
		s = snap.User.Email + " "
	case snap.State == session.StatePending:
		s = "resuming "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	s = strings.TrimSpace(s)
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root resumes any stored session, starts the background watchers and runs
// the REPL until the user leaves or ctx is cancelled.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to gophauth CLI (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.watchSession(ctx)

	if err := a.auth.Load(ctx); err != nil {
		log.Printf("Could not resume session: %v", err)
	}
	a.checkOnline(ctx)
	if a.mode() == ModeOnline && a.auth.Session().Current().State == session.StateUnauthenticated {
		log.Println("Not signed in")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
