// AngelaMos | 2026
// sqlite.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qhub-dev/qhub/internal/core"
)

// sqliteUser mirrors User with timestamps stored as unix seconds.
type sqliteUser struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	Username      sql.NullString `db:"username"`
	DisplayName   sql.NullString `db:"display_name"`
	PasswordHash  sql.NullString `db:"password_hash"`
	Tier          string         `db:"tier"`
	IsActive      bool           `db:"is_active"`
	EmailVerified bool           `db:"email_verified"`
	CreatedAt     int64          `db:"created_at"`
	UpdatedAt     int64          `db:"updated_at"`
	LastLoginAt   sql.NullInt64  `db:"last_login_at"`
}

func (s sqliteUser) toUser() *User {
	u := &User{
		ID:            s.ID,
		Email:         s.Email,
		Tier:          s.Tier,
		IsActive:      s.IsActive,
		EmailVerified: s.EmailVerified,
		CreatedAt:     time.Unix(s.CreatedAt, 0).UTC(),
		UpdatedAt:     time.Unix(s.UpdatedAt, 0).UTC(),
	}
	if s.Username.Valid {
		u.Username = &s.Username.String
	}
	if s.DisplayName.Valid {
		u.DisplayName = &s.DisplayName.String
	}
	if s.PasswordHash.Valid {
		u.PasswordHash = &s.PasswordHash.String
	}
	if s.LastLoginAt.Valid {
		t := time.Unix(s.LastLoginAt.Int64, 0).UTC()
		u.LastLoginAt = &t
	}
	return u
}

const sqliteUserColumns = `id, email, username, display_name, password_hash, tier,
	is_active, email_verified, created_at, updated_at, last_login_at`

type sqliteRepository struct {
	db  core.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db core.DBTX) Repository {
	return &sqliteRepository{db: db, now: time.Now}
}

func (r *sqliteRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, username, display_name, password_hash,
		                   tier, is_active, email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := r.now().UTC().Truncate(time.Second)

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.DisplayName,
		user.PasswordHash,
		user.Tier,
		user.IsActive,
		user.EmailVerified,
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return core.StorageError("create user", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *sqliteRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id)
}

func (r *sqliteRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "get user by email",
		`SELECT `+sqliteUserColumns+` FROM users WHERE email = ?`, email)
}

func (r *sqliteRepository) getOne(
	ctx context.Context,
	op, query string,
	arg any,
) (*User, error) {
	var row sqliteUser
	err := r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StorageError(op, err)
	}
	return row.toUser(), nil
}

func (r *sqliteRepository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
	if err != nil {
		return false, core.StorageError("check email exists", err)
	}
	return exists, nil
}

func (r *sqliteRepository) UpdateLastLogin(
	ctx context.Context,
	id string,
	at time.Time,
) error {
	return r.execOne(ctx, "update last login",
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at.Unix(), r.now().Unix(), id)
}

func (r *sqliteRepository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return r.execOne(ctx, "update password",
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, r.now().Unix(), id)
}

func (r *sqliteRepository) SetActive(
	ctx context.Context,
	id string,
	active bool,
) error {
	return r.execOne(ctx, "set active",
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, r.now().Unix(), id)
}

func (r *sqliteRepository) UpdateTier(
	ctx context.Context,
	id, tier string,
) error {
	return r.execOne(ctx, "update tier",
		`UPDATE users SET tier = ?, updated_at = ? WHERE id = ?`,
		tier, r.now().Unix(), id)
}

func (r *sqliteRepository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.StorageError(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.StorageError(op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
