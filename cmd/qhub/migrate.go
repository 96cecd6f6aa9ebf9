// AngelaMos | 2026
// migrate.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, db *core.Database) error {
			if err := migrations.Up(ctx, db); err != nil {
				return err
			}

			version, err := migrations.Version(ctx, db)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", version, db.Dialect)
			return nil
		})
	},
}

// withDatabase opens the configured database for a one-shot command.
// Migrations run first when auto-migrate is on.
func withDatabase(
	ctx context.Context,
	fn func(context.Context, *core.Database) error,
) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.SetDefault(setupLogger(cfg.Log, os.Stderr))

	if !cfg.AuthEnabled() {
		return errNoDatabase
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db); err != nil {
			return err
		}
	}

	return fn(ctx, db)
}
