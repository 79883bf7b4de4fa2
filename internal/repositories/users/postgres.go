package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/psergee/authd/internal/dbx"
	"github.com/psergee/authd/internal/models"
)

// ErrNotFound marks an absent user row.
var ErrNotFound = errors.New("user not found")

// PostgresRepository implements Repository over a dbx.DBTX, so it runs
// equally against *sql.DB and an open transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, auth_id, name, email, provider, provider_key, role,
	password_hash, picture, active, is_email_verified, create_time, update_time`

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var provider, role string

	err := row.Scan(&user.ID, &user.AuthID, &user.Name, &user.Email, &provider,
		&user.ProviderKey, &role, &user.PasswordHash, &user.Picture,
		&user.Active, &user.IsEmailVerified, &user.CreateTime, &user.UpdateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if user.Provider, err = models.ParseProvider(provider); err != nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, err)
	}
	if user.Role, err = models.ParseRole(role); err != nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string, provider models.Provider) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND provider = $2`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email, string(provider)))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Insert(ctx context.Context, user *models.User) (int64, error) {
	query := `INSERT INTO users
		(auth_id, name, email, provider, provider_key, role, password_hash,
		 picture, active, is_email_verified, create_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		user.AuthID, user.Name, user.Email, string(user.Provider), user.ProviderKey,
		string(user.Role), user.PasswordHash, user.Picture, user.Active,
		user.IsEmailVerified, user.CreateTime).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	user.ID = id
	return id, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, name string, picture *string, updateTime time.Time) (int64, error) {
	// picture is left untouched when no new upload was provided
	query := `UPDATE users
		SET name = $2, picture = COALESCE($3, picture), update_time = $4
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, name, picture, updateTime)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, updateTime time.Time) (bool, error) {
	query := `UPDATE users SET password_hash = $2, update_time = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, passwordHash, updateTime)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) UpdateVerification(ctx context.Context, id int64, active, isEmailVerified bool, updateTime time.Time) (bool, error) {
	query := `UPDATE users SET active = $2, is_email_verified = $3, update_time = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, active, isEmailVerified, updateTime)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) ClearPicture(ctx context.Context, id int64, updateTime time.Time) (int64, error) {
	query := `UPDATE users SET picture = NULL, update_time = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, updateTime)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
