package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mandel "github.com/marben/mandelrender"
	"github.com/marben/mandelrender/internal/config"
	"github.com/marben/mandelrender/internal/metrics"
)

// main is the entry point for the preview server.
// It renders the configured image, re-renders whenever the config file
// changes and serves the result over HTTP.
func main() {
	if err := run(); err != nil {
		slog.Error("run", "err", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	mandel.SetLogger(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var m metrics.Render
	rs := newRenderScheduler(&m)
	go rs.run(ctx)
	rs.submit(cfg)

	// Every successful reload queues a new render.
	go func() {
		if err := config.Watch(ctx, *configPath, rs.submit); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	srv := webServer(cfg.Server.Addr, rs, &m)
	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
