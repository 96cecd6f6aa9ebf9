// AngelaMos | 2026
// migrations.go

package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/qhub-dev/qhub/internal/core"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

func provider(db *core.Database) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch db.Dialect {
	case core.DialectPostgres:
		dialect = goose.DialectPostgres
	case core.DialectSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", db.Dialect)
	}

	sub, err := fs.Sub(files, string(db.Dialect))
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	p, err := goose.NewProvider(dialect, db.DB.DB, sub)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return p, nil
}

// Up applies all pending migrations for the database's dialect.
func Up(ctx context.Context, db *core.Database) error {
	p, err := provider(db)
	if err != nil {
		return err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		slog.Info("migration applied",
			"dialect", db.Dialect,
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}
	return nil
}

// Version reports the highest applied migration version.
func Version(ctx context.Context, db *core.Database) (int64, error) {
	p, err := provider(db)
	if err != nil {
		return 0, err
	}

	v, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return v, nil
}
