package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/filex"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const dbFileName = "gophauth.db"

// authService is the part of *services.AuthService the CLI drives.
type authService interface {
	Session() *session.Store
	Load(ctx context.Context) error
	LastEmail(ctx context.Context) string
	SignUp(ctx context.Context, email, name, password string) (*api.User, error)
	SignUpWithPasskey(ctx context.Context, email, name string) (*services.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*api.User, error)
	SignInWithPasskey(ctx context.Context, email string) (*api.User, error)
	SignOut(ctx context.Context) error
	AddPasskey(ctx context.Context, name string) error
	ListSessions(ctx context.Context) ([]*api.Session, error)
	RevokeOtherSessions(ctx context.Context) (int64, error)
	ListCredentials(ctx context.Context) ([]*api.Credential, error)
	UpdateProfile(ctx context.Context, name string) (*api.User, error)
	DeleteAccount(ctx context.Context) error
	RequestEmailVerification(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) (*api.User, error)
	UploadAvatar(ctx context.Context, path string) (*api.User, error)
	AvatarURL(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	config *config.Config
	auth   authService
	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer

	mu   sync.RWMutex
	Mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	dir, err := filex.EnsureDataDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, client.DefaultUserAgent)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reader := bufio.NewReader(os.Stdin)
	authn := newTerminalAuthenticator(reader, os.Stdout)
	as := services.NewAuthService(apiClient, metadata.NewSQLiteRepository(db), authn)

	return &App{config: c, auth: as, db: db, reader: reader, out: os.Stdout}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Mode
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.auth.Close()
		if a.db != nil {
			_ = a.db.Close()
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.Session().Current().State == session.StateAuthenticated
}

// checkOnline pings the server and, once it answers, retries resolving a
// session that is still pending.
func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.auth.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)

	if a.auth.Session().Current().State == session.StatePending {
		if err := a.auth.Load(ctx); err != nil {
			log.Printf("Could not resume session: %v", err)
		}
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Printf("Online status watcher disabled: interval %s", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// watchSession logs session state transitions until ctx is done.
func (a *App) watchSession(ctx context.Context) {
	prev := session.StatePending
	for snap := range a.auth.Session().Subscribe(ctx) {
		if snap.State == prev {
			continue
		}
		switch {
		case snap.State == session.StateAuthenticated && snap.User != nil:
			log.Printf("Signed in as %s", snap.User.Email)
		case snap.State == session.StateUnauthenticated && prev == session.StateAuthenticated:
			log.Printf("Signed out")
		}
		prev = snap.State
	}
}
