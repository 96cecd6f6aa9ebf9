// AngelaMos | 2026
// sessions.go

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Maintain stored login sessions",
}

var sessionsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete sessions past their expiry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, db *core.Database) error {
			n, err := session.NewRepository(db).DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired session(s)\n", n)
			return nil
		})
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsSweepCmd)
}
