// Package publish turns saves of a local file into new pastes.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/pastebin/internal/checksum"
	"github.com/starford/pastebin/internal/document"
	"github.com/starford/pastebin/internal/models"
	"github.com/starford/pastebin/internal/recent"
)

// DefaultDebounce is how long the file must stay quiet before it is published.
const DefaultDebounce = 200 * time.Millisecond

// PublishedFunc is called after each successful publish.
type PublishedFunc func(res document.Result)

// Options configures Watch.
type Options struct {
	Remote    document.Remote
	Recorder  recent.Recorder
	Logger    *slog.Logger
	Debounce  time.Duration
	Published PublishedFunc
}

// Watch publishes the contents of path as a new paste every time the file
// is saved, until ctx is cancelled. Blank contents, and contents identical
// to the last publish or to the file as it was when watching started, are
// skipped. Each publish locks a fresh document.
//
// The parent directory is watched rather than the file so editors that save
// by renaming a temp file over it are still seen.
func Watch(ctx context.Context, path string, opts Options) error {
	if opts.Remote == nil {
		return errors.New("publish: remote is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if info, err := os.Stat(abs); err != nil {
		return fmt.Errorf("publish: %w", err)
	} else if info.IsDir() {
		return fmt.Errorf("publish: %s is a directory", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("publish: watch %s: %w", filepath.Dir(abs), err)
	}

	p := &publisher{opts: opts, logger: logger, path: abs}
	if data, err := os.ReadFile(abs); err == nil {
		p.last = checksum.Sum(data)
	}

	logger.Info("watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			p.publish(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				logger.Debug("watcher: change", slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

type publisher struct {
	opts   Options
	logger *slog.Logger
	path   string
	last   string
}

func (p *publisher) publish(ctx context.Context) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Warn("watcher: read failed", slog.String("path", p.path), slog.String("error", err.Error()))
		return
	}
	if strings.TrimSpace(string(data)) == "" {
		p.logger.Debug("watcher: blank file skipped")
		return
	}
	sum := checksum.Sum(data)
	if sum == p.last {
		p.logger.Debug("watcher: unchanged file skipped")
		return
	}

	res, err := document.New(p.opts.Remote).Save(ctx, string(data))
	if err != nil {
		p.logger.Error("watcher: publish failed", slog.String("error", err.Error()))
		return
	}
	p.last = sum
	p.logger.Info("watcher: published", slog.String("key", res.Key))

	if p.opts.Recorder != nil {
		if err := p.opts.Recorder.RecordPaste(ctx, res.Key, models.ActionSaved, res.Content); err != nil {
			p.logger.Warn("watcher: record failed", slog.String("key", res.Key), slog.String("error", err.Error()))
		}
	}
	if p.opts.Published != nil {
		p.opts.Published(res)
	}
}
