package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// Sweeper periodically deletes expired sessions and verifications. Expired
// rows are already invalid; sweeping only reclaims space.
type Sweeper struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	interval time.Duration
	logger   logging.Logger
	observer SweepObserver
	now      func() time.Time
}

// SweepObserver is told how many rows each successful pass removed.
type SweepObserver interface {
	Swept(sessions, verifications int64)
}

func NewSweeper(db *sql.DB, repos repomanager.RepositoryManager, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{db: db, repos: repos, interval: interval, logger: logger, now: time.Now}
}

// WithObserver attaches o to every later pass of Run.
func (s *Sweeper) WithObserver(o SweepObserver) *Sweeper {
	s.observer = o
	return s
}

// SweepOnce runs a single pass and reports how many rows went.
func (s *Sweeper) SweepOnce(ctx context.Context) (sessions, verifications int64, err error) {
	now := s.now()
	if sessions, err = s.repos.Sessions(s.db).DeleteExpired(ctx, now); err != nil {
		return 0, 0, err
	}
	if verifications, err = s.repos.Verifications(s.db).DeleteExpired(ctx, now); err != nil {
		return sessions, 0, err
	}
	return sessions, verifications, nil
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables sweeping.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sess, ver, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Warn(ctx, "sweep failed", "error", err)
				continue
			}
			if s.observer != nil {
				s.observer.Swept(sess, ver)
			}
			if sess > 0 || ver > 0 {
				s.logger.Info(ctx, "swept expired rows", "sessions", sess, "verifications", ver)
			}
		}
	}
}
