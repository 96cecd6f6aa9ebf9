// AngelaMos | 2026
// repository.go

package session

import (
	"context"
	"time"

	"github.com/qhub-dev/qhub/internal/core"
)

// Repository persists sessions keyed by token hash. Every method is a
// single auto-committed statement; callers pass the current time so the
// expiry checks follow the caller's clock.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindActive(ctx context.Context, tokenHash string, now time.Time) (*Session, error)
	Touch(ctx context.Context, id string, now time.Time) error
	Delete(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ListActiveForUser(ctx context.Context, userID string, now time.Time) ([]Session, error)
}

func NewRepository(db *core.Database) Repository {
	if db.Dialect == core.DialectSQLite {
		return NewSQLiteRepository(db.DB)
	}
	return NewPostgresRepository(db.DB)
}
