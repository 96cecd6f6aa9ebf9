// AngelaMos | 2026
// sqlite.go

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qhub-dev/qhub/internal/core"
)

type sqliteSession struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	TokenHash    string         `db:"token_hash"`
	DeviceInfo   sql.NullString `db:"device_info"`
	IPAddress    sql.NullString `db:"ip_address"`
	ExpiresAt    int64          `db:"expires_at"`
	CreatedAt    int64          `db:"created_at"`
	LastActiveAt int64          `db:"last_active_at"`
}

func (s sqliteSession) toSession() Session {
	out := Session{
		ID:           s.ID,
		UserID:       s.UserID,
		TokenHash:    s.TokenHash,
		ExpiresAt:    time.Unix(s.ExpiresAt, 0).UTC(),
		CreatedAt:    time.Unix(s.CreatedAt, 0).UTC(),
		LastActiveAt: time.Unix(s.LastActiveAt, 0).UTC(),
	}
	if s.DeviceInfo.Valid {
		out.DeviceInfo = &s.DeviceInfo.String
	}
	if s.IPAddress.Valid {
		out.IPAddress = &s.IPAddress.String
	}
	return out
}

const sqliteSessionColumns = `id, user_id, token_hash, device_info, ip_address,
	expires_at, created_at, last_active_at`

type sqliteRepository struct {
	db core.DBTX
}

func NewSQLiteRepository(db core.DBTX) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) Create(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO user_sessions (
			id, user_id, token_hash, device_info, ip_address,
			expires_at, created_at, last_active_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.TokenHash,
		s.DeviceInfo,
		s.IPAddress,
		s.ExpiresAt.Unix(),
		s.CreatedAt.Unix(),
		s.CreatedAt.Unix(),
	)
	if err != nil {
		return core.StorageError("create session", err)
	}

	s.LastActiveAt = s.CreatedAt
	return nil
}

func (r *sqliteRepository) FindActive(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*Session, error) {
	query := `SELECT ` + sqliteSessionColumns + `
		FROM user_sessions
		WHERE token_hash = ? AND expires_at > ?`

	var row sqliteSession
	err := r.db.GetContext(ctx, &row, query, tokenHash, now.Unix())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StorageError("find session", err)
	}

	s := row.toSession()
	return &s, nil
}

func (r *sqliteRepository) Touch(
	ctx context.Context,
	id string,
	now time.Time,
) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_sessions SET last_active_at = ? WHERE id = ?`,
		now.Unix(), id)
	if err != nil {
		return core.StorageError("touch session", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.StorageError("touch session", err)
	}

	if rows == 0 {
		return fmt.Errorf("touch session: %w", core.ErrNotFound)
	}

	return nil
}

func (r *sqliteRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_sessions WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return core.StorageError("delete session", err)
	}
	return nil
}

func (r *sqliteRepository) DeleteAllForUser(
	ctx context.Context,
	userID string,
) (int64, error) {
	return r.deleteCount(ctx, "delete user sessions",
		`DELETE FROM user_sessions WHERE user_id = ?`, userID)
}

func (r *sqliteRepository) DeleteExpired(
	ctx context.Context,
	now time.Time,
) (int64, error) {
	return r.deleteCount(ctx, "delete expired sessions",
		`DELETE FROM user_sessions WHERE expires_at < ?`, now.Unix())
}

func (r *sqliteRepository) ListActiveForUser(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]Session, error) {
	query := `SELECT ` + sqliteSessionColumns + `
		FROM user_sessions
		WHERE user_id = ? AND expires_at > ?
		ORDER BY created_at DESC`

	var rows []sqliteSession
	if err := r.db.SelectContext(ctx, &rows, query, userID, now.Unix()); err != nil {
		return nil, core.StorageError("list sessions", err)
	}

	sessions := make([]Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toSession())
	}
	return sessions, nil
}

func (r *sqliteRepository) deleteCount(
	ctx context.Context,
	op, query string,
	arg any,
) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, core.StorageError(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, core.StorageError(op, err)
	}

	return rows, nil
}
