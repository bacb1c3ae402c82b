package verifications

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Verification) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	query := `
		INSERT INTO verifications (id, identifier, value, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, v.ID, v.Identifier, v.Value, v.ExpiresAt).
		Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		return dbx.WrapError(err)
	}
	return nil
}

func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Verification, error) {
	query := `
		SELECT id, identifier, value, expires_at, created_at, updated_at
		FROM verifications
		WHERE identifier = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, identifier))
}

// Consume relies on DELETE ... RETURNING so two concurrent consumers cannot
// both observe the record.
func (r *PostgresRepository) Consume(ctx context.Context, identifier string) (*models.Verification, error) {
	query := `
		DELETE FROM verifications
		WHERE identifier = $1
		RETURNING id, identifier, value, expires_at, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, identifier))
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verifications WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, dbx.WrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbx.WrapError(err)
	}
	return n, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Verification, error) {
	var v models.Verification
	if err := row.Scan(&v.ID, &v.Identifier, &v.Value, &v.ExpiresAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.WrapError(err)
	}
	return &v, nil
}
