// Package server wires the auth server together: configuration, the
// PostgreSQL store and its migrations, the identity services, and the gRPC,
// ops and sweeper loops, all stopped by a shared context on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/ops"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/telemetry"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const serviceName = "gophauth"

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	users    *services.UserService
	emails   *services.EmailVerificationService
	avatars  *services.AvatarService
	sweeper  *services.Sweeper
	shutdown func(context.Context) error
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.New(os.Stdout, c.LogLevel)

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, serviceName, c.OTELEndpoint)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	sessions := services.NewSessionService(db, repos, c.SessionTTL)
	passwords := services.NewPasswordStrategy(db, repos)
	passkeys, err := services.NewPasskeyStrategy(db, repos, c)
	if err != nil {
		// passkeys are optional: password auth keeps working
		logger.Warn(ctx, "passkeys disabled", "error", err)
		passkeys = nil
	}

	m := metrics.New()

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		metrics:  m,
		users:    services.NewUserService(db, repos, sessions, passwords, passkeys),
		emails:   services.NewEmailVerificationService(db, repos, c.EmailVerificationTTL),
		avatars:  services.NewAvatarService(db, repos, c),
		sweeper:  services.NewSweeper(db, repos, c.SweepInterval, logger).WithObserver(m),
		shutdown: shutdown,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.users, app.emails, app.avatars, app.metrics)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startOpsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := ops.NewServer(app.config.OpsAddrHTTP, app.db, app.metrics.Handler(), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "ops server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startOpsServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.shutdown(context.Background()); err != nil {
		app.logger.Warn(context.Background(), "telemetry shutdown", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
