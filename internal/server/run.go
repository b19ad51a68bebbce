package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/me/mlfq/internal/config"
	"github.com/me/mlfq/internal/logging"
	"github.com/me/mlfq/internal/store"
)

// shutdownTimeout bounds how long in-flight requests get after ctx ends.
const shutdownTimeout = 5 * time.Second

// Run opens the configured database, serves the API on cfg.Addr and shuts
// down gracefully when ctx is cancelled.
func Run(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) error {
	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database ready", "path", dbPath)

	srv := New(cfg, st, logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", logging.ErrAttr(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
