// AngelaMos | 2026
// postgres.go

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qhub-dev/qhub/internal/core"
)

const pgSessionColumns = `id, user_id, token_hash, device_info, ip_address,
	expires_at, created_at, last_active_at`

type postgresRepository struct {
	db core.DBTX
}

func NewPostgresRepository(db core.DBTX) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO user_sessions (
			id, user_id, token_hash, device_info, ip_address,
			expires_at, created_at, last_active_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $7
		)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.TokenHash,
		s.DeviceInfo,
		s.IPAddress,
		s.ExpiresAt,
		s.CreatedAt,
	)
	if err != nil {
		return core.StorageError("create session", err)
	}

	s.LastActiveAt = s.CreatedAt
	return nil
}

func (r *postgresRepository) FindActive(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*Session, error) {
	query := `SELECT ` + pgSessionColumns + `
		FROM user_sessions
		WHERE token_hash = $1 AND expires_at > $2`

	var s Session
	err := r.db.GetContext(ctx, &s, query, tokenHash, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StorageError("find session", err)
	}

	return &s, nil
}

func (r *postgresRepository) Touch(
	ctx context.Context,
	id string,
	now time.Time,
) error {
	query := `
		UPDATE user_sessions
		SET last_active_at = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, now)
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

func (r *postgresRepository) Delete(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM user_sessions WHERE token_hash = $1`

	if _, err := r.db.ExecContext(ctx, query, tokenHash); err != nil {
		return core.StorageError("delete session", err)
	}

	return nil
}

func (r *postgresRepository) DeleteAllForUser(
	ctx context.Context,
	userID string,
) (int64, error) {
	query := `DELETE FROM user_sessions WHERE user_id = $1`

	return r.deleteCount(ctx, "delete user sessions", query, userID)
}

func (r *postgresRepository) DeleteExpired(
	ctx context.Context,
	now time.Time,
) (int64, error) {
	query := `DELETE FROM user_sessions WHERE expires_at < $1`

	return r.deleteCount(ctx, "delete expired sessions", query, now)
}

func (r *postgresRepository) ListActiveForUser(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]Session, error) {
	query := `SELECT ` + pgSessionColumns + `
		FROM user_sessions
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, userID, now); err != nil {
		return nil, core.StorageError("list sessions", err)
	}

	return sessions, nil
}

func (r *postgresRepository) deleteCount(
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
