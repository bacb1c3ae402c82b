package accounts

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

const selectColumns = `id, account_id, provider_id, user_id, name, access_token, refresh_token, scope, password, credential, expires_at, created_at, updated_at`

// ErrAlreadyLinked means the provider credential is bound to some user already.
var ErrAlreadyLinked = errors.New("credential already linked")

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO accounts (id, account_id, provider_id, user_id, name, access_token, refresh_token, scope, password, credential, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	var expires sql.NullTime
	if a.ExpiresAt != nil {
		expires = sql.NullTime{Time: *a.ExpiresAt, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.AccountID, a.ProviderID, a.UserID,
		dbx.NullString(a.Name), dbx.NullString(a.AccessToken), dbx.NullString(a.RefreshToken),
		dbx.NullString(a.Scope), dbx.NullString(a.Password), dbx.NullString(a.Credential), expires).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err, ""):
			return ErrAlreadyLinked
		case dbx.IsForeignKeyViolation(err):
			return fmt.Errorf("account owner %s: %w", a.UserID, common.ErrorNotFound)
		}
		return dbx.WrapError(err)
	}
	return nil
}

func (r *PostgresRepository) GetByProvider(ctx context.Context, providerID, accountID string) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE provider_id = $1 AND account_id = $2`
	return r.getOne(ctx, query, providerID, accountID)
}

func (r *PostgresRepository) GetByUserAndProvider(ctx context.Context, userID, providerID string) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE user_id = $1 AND provider_id = $2 ORDER BY created_at LIMIT 1`
	return r.getOne(ctx, query, userID, providerID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.WrapError(err)
	}
	return a, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, dbx.WrapError(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.WrapError(err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateCredential(ctx context.Context, id, credential string) error {
	query := `UPDATE accounts SET credential = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, credential)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM accounts WHERE id = $1 AND user_id = $2`
	return r.execOne(ctx, query, id, userID)
}

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

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		a                                                  models.Account
		name, access, refresh, scope, password, credential sql.NullString
		expires                                            sql.NullTime
	)
	err := row.Scan(&a.ID, &a.AccountID, &a.ProviderID, &a.UserID,
		&name, &access, &refresh, &scope, &password, &credential,
		&expires, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Name = name.String
	a.AccessToken = access.String
	a.RefreshToken = refresh.String
	a.Scope = scope.String
	a.Password = password.String
	a.Credential = credential.String
	if expires.Valid {
		t := expires.Time
		a.ExpiresAt = &t
	}
	return &a, nil
}
