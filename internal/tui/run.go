// AngelaMos | 2026
// run.go

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const shutdownGrace = 3 * time.Second

// Run drives the chat screen until the user quits or ctx ends, then
// closes the dispatcher pool. Outstanding requests get a short grace
// period and are otherwise abandoned.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := deps.Pool.Close(closeCtx); err != nil {
		slog.Warn("background operations still running at exit", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", runErr)
	}
	return nil
}
