// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "qhub",
	Short: "QHub - quantum computing assistant in your terminal",
	Long: `QHub is an interactive terminal chat client for designing quantum
circuits with an AI assistant.

Run without arguments to open the chat. Accounts are enabled when
DATABASE_URL points at PostgreSQL (postgres://...) or SQLite (sqlite://...).`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a YAML config file (optional)")

	rootCmd.AddCommand(serveCmd, migrateCmd, sessionsCmd, usersCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
