package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/pastebin/internal/document"
	"github.com/starford/pastebin/internal/navigation"
	"github.com/starford/pastebin/internal/session"
)

// Options configures an interactive session.
type Options struct {
	Remote      document.Remote
	Links       session.Links
	Recorder    session.Recorder
	Logger      *slog.Logger
	InitialPath string
}

// Run opens the editor at opts.InitialPath and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hist := navigation.NewHistory(opts.InitialPath)
	defer hist.Close()

	surface := NewSurface()
	ctrlOpts := []session.Option{
		session.WithLogger(logger),
		session.WithNavigation(hist),
	}
	if opts.Recorder != nil {
		ctrlOpts = append(ctrlOpts, session.WithRecorder(opts.Recorder))
	}
	ctrl := session.New(opts.Remote, opts.Links, surface, NewBrowser(hist), ctrlOpts...)

	p := tea.NewProgram(newModel(surface, ctrl, hist), tea.WithAltScreen(), tea.WithContext(ctx))
	surface.Attach(p)

	if err := ctrl.Start(ctx, opts.InitialPath); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	defer ctrl.Close()

	logger.Info("tui: session started", slog.String("path", navigation.Clean(opts.InitialPath)))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	logger.Info("tui: session ended", slog.String("path", hist.Current()))
	return nil
}
