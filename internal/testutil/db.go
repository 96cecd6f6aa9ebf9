// AngelaMos | 2026
// db.go

package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/config"
	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/migrations"
)

// NewSQLiteDB opens a migrated SQLite database in a temp dir that is closed
// when the test ends.
func NewSQLiteDB(t *testing.T) *core.Database {
	t.Helper()

	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "qhub.db")

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(ctx, db))
	return db
}

// FastHashing returns argon2id parameters cheap enough for unit tests.
func FastHashing() config.HashingConfig {
	return config.HashingConfig{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		KeyLength:   32,
		SaltLength:  16,
	}
}
