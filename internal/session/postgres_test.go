// AngelaMos | 2026
// postgres_test.go

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewPostgresRepository(sqlx.NewDb(db, "pgx")), mock
}

var sessionCols = []string{
	"id", "user_id", "token_hash", "device_info", "ip_address",
	"expires_at", "created_at", "last_active_at",
}

func TestPostgresFindActive(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM user_sessions\s+WHERE token_hash = \$1 AND expires_at > \$2`).
		WithArgs("hash", now).
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(
			"s-1", "u-1", "hash", nil, "10.0.0.1", now.Add(time.Hour), now, now,
		))

	s, err := repo.FindActive(context.Background(), "hash", now)
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.UserID)
	require.NotNil(t, s.IPAddress)
	assert.Equal(t, "10.0.0.1", *s.IPAddress)
}

func TestPostgresFindActiveMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM user_sessions`).
		WillReturnRows(sqlmock.NewRows(sessionCols))

	_, err := repo.FindActive(context.Background(), "hash", time.Now())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPostgresDeleteExpired(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(`DELETE FROM user_sessions WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestPostgresDeleteStorageError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM user_sessions WHERE token_hash = \$1`).
		WithArgs("hash").
		WillReturnError(errors.New("conn closed"))

	err := repo.Delete(context.Background(), "hash")
	assert.ErrorIs(t, err, core.ErrStorage)
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO user_sessions`).
		WithArgs("s-1", "u-1", "hash", sqlmock.AnyArg(), sqlmock.AnyArg(), now.Add(time.Hour), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &Session{ID: "s-1", UserID: "u-1", TokenHash: "hash", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, now, s.LastActiveAt)
}
