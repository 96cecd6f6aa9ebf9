// AngelaMos | 2026
// tui.go

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/qhub-dev/qhub/internal/chat"
	"github.com/qhub-dev/qhub/internal/dispatch"
	"github.com/qhub-dev/qhub/internal/tui"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := setupLogger(cfg.Log, logFile)
	slog.SetDefault(logger)

	logger.Info("starting chat client",
		"version", cfg.App.Version,
		"auth_enabled", cfg.AuthEnabled(),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.close(closeCtx)
	}()

	return tui.Run(ctx, tui.Deps{
		Config:  cfg,
		Auth:    a.authSvc,
		Chat:    chat.NewClient(cfg.Chat),
		Limiter: a.limiter,
		Pool:    dispatch.NewPool(cfg.TUI.Workers),
	})
}
