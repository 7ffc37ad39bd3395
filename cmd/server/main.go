package main

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

	"golang.org/x/sync/errgroup"

	"foodreel/internal/gateway"
	"foodreel/internal/platform/config"
	"foodreel/internal/platform/httpserver"
	"foodreel/internal/platform/logger"
	"foodreel/internal/platform/metrics"
	"foodreel/internal/platform/tracing"
	"foodreel/internal/session"
	"foodreel/internal/shell"
	"foodreel/internal/storage"
)

// main wires storage, the session holder, the gateway and the shell, then keeps
// the server lifecycle small. View logic lives in internal/pages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing storage", "error", err)
		}
	}()

	var m *metrics.Metrics
	if cfg.Server.MetricsEnabled {
		m = metrics.New()
	}

	tp, shutdownTracing, err := tracing.New(cfg.Tracing, os.Stderr)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("flushing spans", "error", err)
		}
	}()

	holder := session.NewHolder(store, log)
	client, err := gateway.New(cfg.Backend.BaseURL,
		gateway.WithTimeout(cfg.Backend.Timeout),
		gateway.WithCredentials(holder),
		gateway.WithInvalidator(holder),
		gateway.WithLogger(log),
		gateway.WithMetrics(m),
		gateway.WithTracerProvider(tp),
	)
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}

	app := shell.New(holder, client, log, m)
	if checker, ok := store.(storage.HealthChecker); ok {
		app.CheckHealth("storage", checker.Health)
	}
	app.Start(ctx)
	defer app.Close()

	srv := httpserver.New(cfg.Server.Addr, app.Router(), cfg.Backend.Timeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting foodreel shell",
			"addr", cfg.Server.Addr,
			"backend", client.BaseURL(),
			"storage", cfg.Storage.Backend,
			"session", holder.Read().Flag.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("shell stopped")
		return nil
	})
	return g.Wait()
}
