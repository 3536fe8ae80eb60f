package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenderdesk/api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
	id, username, email, password_hash, role, is_verified,
	verification_token_hash, reset_token_hash, reset_token_expires_at,
	refresh_token_hash, refresh_token_expires_at, created_at, updated_at
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsVerified,
		&user.VerificationTokenHash,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.RefreshTokenHash,
		&user.RefreshTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, username, email, password_hash, role, is_verified,
			verification_token_hash, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.VerificationTokenHash,
	)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *UserRepository) FindByVerificationTokenHash(ctx context.Context, hash []byte) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE verification_token_hash = $1`
	return scanUser(r.pool.QueryRow(ctx, query, hash))
}

func (r *UserRepository) FindByResetTokenHash(ctx context.Context, hash []byte) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1`
	return scanUser(r.pool.QueryRow(ctx, query, hash))
}

func (r *UserRepository) FindByRefreshTokenHash(ctx context.Context, hash []byte) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE refresh_token_hash = $1`
	return scanUser(r.pool.QueryRow(ctx, query, hash))
}

// MarkVerified flips is_verified and consumes the verification token in one
// statement, so the token cannot succeed twice.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET is_verified = TRUE, verification_token_hash = NULL, updated_at = NOW()
		WHERE id = $1 AND verification_token_hash IS NOT NULL
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id string, hash []byte, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, hash, expiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash and revokes every outstanding
// single-use credential: the reset token is consumed and the refresh token
// is cleared so existing sessions must log in again.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	const query = `
		UPDATE users
		SET password_hash = $2,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    refresh_token_hash = NULL,
		    refresh_token_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id string, hash []byte, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET refresh_token_hash = $2, refresh_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, hash, expiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, username string, email string) (models.User, error) {
	const query = `
		UPDATE users
		SET username = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, username, email))
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) (models.User, error) {
	const query = `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, role))
}

func (r *UserRepository) List(ctx context.Context, limit int, offset int) ([]models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Tables holding per-account rows that must be emptied before the users
// row can go. The schema keeps plain foreign keys without ON DELETE
// CASCADE, so deletion order matters.
var userDependentTables = []string{
	"activity_logs",
	"notifications",
	"notes",
	"user_settings",
	"documents",
}

func deleteUserCascade(ctx context.Context, tx execer, id string) error {
	for _, table := range userDependentTables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, id); err != nil {
			return err
		}
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user and every dependent per-account row in one
// transaction. Dependents go first.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := deleteUserCascade(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// PurgeExpiredResetTokens nulls reset tokens whose expiry has passed.
func (r *UserRepository) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	const query = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at < NOW()
	`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// PurgeExpiredRefreshTokens nulls refresh tokens whose expiry has passed.
func (r *UserRepository) PurgeExpiredRefreshTokens(ctx context.Context) (int64, error) {
	const query = `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_token_expires_at = NULL
		WHERE refresh_token_expires_at IS NOT NULL AND refresh_token_expires_at < NOW()
	`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
