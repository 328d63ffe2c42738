// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/pastebin/internal/api"
	"github.com/starford/pastebin/internal/models"
	"github.com/starford/pastebin/internal/pasteservice"
	"github.com/starford/pastebin/internal/sse"
	"github.com/starford/pastebin/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// Serve runs the reference paste store until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.Server.HTTP.Address()),
		slog.String("data_path", cfg.Server.DataPath),
		slog.Int("max_length", cfg.Server.MaxLength),
		slog.Int("key_length", cfg.Server.KeyLength),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(64)
	defer broker.Close()

	handler, err := newServerHandler(cfg, broker)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.Server.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE streams never finish on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newServerHandler builds the store's HTTP handler: documents API, health
// probes and the creation event stream.
func newServerHandler(cfg *Config, broker *sse.Broker) (http.Handler, error) {
	if err := os.MkdirAll(cfg.Server.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Server.DataPath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	svc := pasteservice.NewService(store,
		pasteservice.WithMaxLength(cfg.Server.MaxLength),
		pasteservice.WithKeyLength(cfg.Server.KeyLength),
		pasteservice.WithCreateHook(func(p models.Paste) {
			broker.PublishCreated(p.Key, len(p.Data))
		}),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := store.List(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", api.NewRouter(svc, broker))
	return r, nil
}
