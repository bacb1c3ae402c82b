package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

const selectColumns = `id, name, email, email_verified, image, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, name, email, email_verified, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Name, u.Email, u.EmailVerified, dbx.NullString(u.Image)).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, "") {
			return fmt.Errorf("%w: %s", common.ErrDuplicateEmail, u.Email)
		}
		return dbx.WrapError(err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u     models.User
		image sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.EmailVerified, &image, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.WrapError(err)
	}
	u.Image = image.String
	return &u, nil
}

func (r *PostgresRepository) UpdateName(ctx context.Context, id, name string) error {
	query := `UPDATE users SET name = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, name)
}

func (r *PostgresRepository) SetImage(ctx context.Context, id, image string) error {
	query := `UPDATE users SET image = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, dbx.NullString(image))
}

func (r *PostgresRepository) SetEmailVerified(ctx context.Context, id string, verified bool) error {
	query := `UPDATE users SET email_verified = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, verified)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	return r.execOne(ctx, query, id)
}

// execOne runs a statement that must touch exactly one row.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbx.WrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbx.WrapError(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
