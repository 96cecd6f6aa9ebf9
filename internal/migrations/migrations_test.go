// AngelaMos | 2026
// migrations_test.go

package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/config"
	"github.com/qhub-dev/qhub/internal/core"
)

func TestUpSQLite(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "qhub.db")

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Up(ctx, db))
	require.NoError(t, Up(ctx, db))

	v, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	var tables []string
	require.NoError(t, db.DB.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'user_sessions') ORDER BY name`))
	assert.Equal(t, []string{"user_sessions", "users"}, tables)
}
