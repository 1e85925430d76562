package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/services"
	"github.com/nvale/scrapedeck/internal/shared"
	"github.com/nvale/scrapedeck/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for history review and conflict
// resolution.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.history == nil || r.metadata == nil {
		return fmt.Errorf("%w: services not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.UI.LogFile
	if logPath == "" {
		logPath = "./tmp/scrapedeck-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	// Live updates are best-effort: without the push channel the page still
	// works through explicit reloads.
	var push *services.PushClient
	if wsURL := r.pushURL(); wsURL != "" {
		push = services.NewPushClient(wsURL, fileLogger)
		if err := push.Connect(ctx); err != nil {
			fileLogger.Warn("push channel unavailable, live updates disabled", "error", err)
			push = nil
		} else {
			defer push.Close()
		}
	}

	query := models.HistoryQuery{
		Page:     1,
		PageSize: r.config.UI.PageSize,
		Status:   models.Status(r.config.UI.StatusFilter),
	}

	model := ui.NewModel(ctx, r.history, r.metadata, push, query, fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// pushURL derives the websocket URL from the configured server base URL.
func (r *Runner) pushURL() string {
	base := r.config.Server.BaseURL
	path := r.config.Server.WebSocketPath
	if base == "" || path == "" {
		return ""
	}
	// http -> ws, https -> wss
	return strings.Replace(base, "http", "ws", 1) + path
}

// tuiCommand returns the top-level TUI command for interactive history review.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for history review and conflict resolution",
		Action:  r.TUI,
	}
}
