package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/webboost/api"
	"github.com/use-agent/webboost/metrics"
	"github.com/use-agent/webboost/webhook"
	"golang.org/x/sync/errgroup"
)

// shutdownGrace is how long in-flight audits get to finish on shutdown.
const shutdownGrace = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the audit HTTP API",
		Long: `Serve the audit API:

  POST /api/analyze        {"url": "..."} → {"success": true, "data": {...}}
  POST /api/v1/analyze     same as above
  GET  /api/v1/audits      recent audits for the X-Auth-Subject caller
  GET  /api/v1/health      liveness and launcher info

Prometheus metrics are served on WEBBOOST_METRICS_PORT (default 9090).`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	cfg := loadConfig(verbose)
	initLogger(cfg.Log, logWriter)

	slog.Info("webboost starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"store", cfg.Store.Driver,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newAuditor(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("store close failed", "error", err)
		}
	}()

	router := api.NewRouter(a, st, webhook.NewNotifier(cfg.Webhook), cfg, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var ms *metrics.Server
	if cfg.Metrics.Port > 0 {
		ms = metrics.NewServer(cfg.Metrics.Port)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if ms != nil {
		g.Go(ms.ListenAndServe)
	}

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server forced shutdown", "error", err)
		} else {
			slog.Info("HTTP server drained gracefully")
		}
		if ms != nil {
			if err := ms.Stop(shutdownCtx); err != nil {
				slog.Warn("metrics server shutdown", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("webboost stopped")
	return nil
}
