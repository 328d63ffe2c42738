package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/starford/pastebin/internal/client"
	"github.com/starford/pastebin/internal/document"
	"github.com/starford/pastebin/internal/mcpserver"
	"github.com/starford/pastebin/internal/models"
	"github.com/starford/pastebin/internal/navigation"
	"github.com/starford/pastebin/internal/publish"
	"github.com/starford/pastebin/internal/recent"
	"github.com/starford/pastebin/internal/tui"
)

// ErrBlankContent is returned by Put for empty or whitespace-only input.
var ErrBlankContent = errors.New("content is blank")

// Open runs the interactive editor. An empty key starts a new paste.
func Open(ctx context.Context, key string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := app.sessionLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	remote, err := app.remote(logger)
	if err != nil {
		return err
	}
	db, err := app.openRecent()
	if err != nil {
		return err
	}
	defer db.Close()

	return tui.Run(ctx, tui.Options{
		Remote:      remote,
		Links:       remote,
		Recorder:    db,
		Logger:      logger,
		InitialPath: navigation.PathOf(key),
	})
}

// Get prints the paste stored under key.
func Get(ctx context.Context, key string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()
	remote, err := app.remote(logger)
	if err != nil {
		return err
	}

	res, err := document.New(remote).Load(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if _, err := io.WriteString(app.stdout, res.Content); err != nil {
		return err
	}
	app.record(ctx, logger, res, models.ActionLoaded)
	return nil
}

// Put publishes the file at path, or standard input when path is "" or "-",
// and prints the new key and share URL.
func Put(ctx context.Context, path string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	var data []byte
	if path == "" || path == "-" {
		data, err = io.ReadAll(app.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("put: read input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return fmt.Errorf("put: %w", ErrBlankContent)
	}

	remote, err := app.remote(logger)
	if err != nil {
		return err
	}
	res, err := document.New(remote).Save(ctx, string(data))
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	fmt.Fprintf(app.stdout, "%s\t%s\n", res.Key, remote.ShareURL(res.Key))
	app.record(ctx, logger, res, models.ActionSaved)
	return nil
}

// Watch publishes path each time it is saved, printing every new key,
// until ctx is cancelled.
func Watch(ctx context.Context, path string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()
	remote, err := app.remote(logger)
	if err != nil {
		return err
	}
	db, err := app.openRecent()
	if err != nil {
		return err
	}
	defer db.Close()

	return publish.Watch(ctx, path, publish.Options{
		Remote:   remote,
		Recorder: db,
		Logger:   logger,
		Published: func(res document.Result) {
			fmt.Fprintf(app.stdout, "%s\t%s\n", res.Key, remote.ShareURL(res.Key))
		},
	})
}

// Recent prints up to limit recorded pastes, newest first.
func Recent(ctx context.Context, limit int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	db, err := app.openRecent()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(app.stdout, "No pastes yet.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KEY", "ACTION", "WHEN", "PREVIEW")
	for _, e := range entries {
		t.Row(e.Key, e.Action, e.SeenAt.Local().Format("2006-01-02 15:04"), e.Preview)
	}
	_, err = fmt.Fprintln(app.stdout, t.String())
	return err
}

// Forget removes key from the local recent list. The paste itself is not
// affected; stored pastes cannot be deleted.
func Forget(ctx context.Context, key string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	db, err := app.openRecent()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Get(ctx, key); err != nil {
		return fmt.Errorf("forget %s: %w", key, err)
	}
	if err := db.Forget(ctx, key); err != nil {
		return fmt.Errorf("forget %s: %w", key, err)
	}
	_, err = fmt.Fprintf(app.stdout, "forgot %s\n", key)
	return err
}

// ServeMCP serves the paste tools over stdio until the client disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	logger := app.logger()
	remote, err := app.remote(logger)
	if err != nil {
		return err
	}
	db, err := app.openRecent()
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("mcp: serving on stdio", slog.String("remote", remote.BaseURL()))
	return mcpserver.New(remote, remote, db, logger).ServeStdio()
}

// logger writes JSON logs to stderr, keeping stdout for command output.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// sessionLogger writes to app.log_file, or nowhere, since the editor owns
// the terminal.
func (a *application) sessionLogger() (*slog.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	if path := a.config.App.LogFile; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func (a *application) remote(logger *slog.Logger) (*client.Client, error) {
	c, err := client.New(a.config.Remote.BaseURL,
		client.WithTimeout(a.config.Remote.Timeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}
	return c, nil
}

func (a *application) openRecent() (*recent.DB, error) {
	path := a.config.SQLite.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := recent.Open(path)
	if err != nil {
		return nil, fmt.Errorf("init recent: %w", err)
	}
	return db, nil
}

// record is best effort: a paste that was published is not undone because
// the local log could not be written.
func (a *application) record(ctx context.Context, logger *slog.Logger, res document.Result, action string) {
	db, err := a.openRecent()
	if err != nil {
		logger.Warn("recent: open failed", slog.String("error", err.Error()))
		return
	}
	defer db.Close()
	if err := db.RecordPaste(ctx, res.Key, action, res.Content); err != nil {
		logger.Warn("recent: record failed", slog.String("key", res.Key), slog.String("error", err.Error()))
	}
}
