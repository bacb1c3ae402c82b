package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

const selectColumns = `id, user_id, token, expires_at, ip_address, user_agent, created_at, updated_at`

// ErrTokenCollision is returned when a freshly generated token already exists.
var ErrTokenCollision = errors.New("session token collision")

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `
		INSERT INTO sessions (id, user_id, token, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.UserID, s.Token, s.ExpiresAt, dbx.NullString(s.IPAddress), dbx.NullString(s.UserAgent)).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err, ""):
			return ErrTokenCollision
		case dbx.IsForeignKeyViolation(err):
			return fmt.Errorf("session owner %s: %w", s.UserID, common.ErrorNotFound)
		}
		return dbx.WrapError(err)
	}
	return nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT ` + selectColumns + ` FROM sessions WHERE token = $1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.WrapError(err)
	}
	return s, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, now time.Time) ([]*models.Session, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM sessions
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, dbx.WrapError(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.WrapError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return dbx.WrapError(err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID, keepToken string) (int64, error) {
	query := `DELETE FROM sessions WHERE user_id = $1 AND token <> $2`
	return r.execCount(ctx, query, userID, keepToken)
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`
	return r.execCount(ctx, query, now)
}

func (r *PostgresRepository) execCount(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, dbx.WrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbx.WrapError(err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		s      models.Session
		ip, ua sql.NullString
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &ip, &ua, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.IPAddress = ip.String
	s.UserAgent = ua.String
	return &s, nil
}
