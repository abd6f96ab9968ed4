package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/use-agent/webboost/audit"
	"github.com/use-agent/webboost/browser"
	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/store"
	"github.com/use-agent/webboost/store/postgres"
	"github.com/use-agent/webboost/store/redisstore"
	"github.com/use-agent/webboost/store/sqlite"
)

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the environment and applies the --verbose flag.
func loadConfig(verbose bool) *config.Config {
	cfg := config.Load()
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg
}

// newAuditor selects the launch strategy once and builds the auditor.
func newAuditor(cfg *config.Config) (*audit.Auditor, error) {
	l := browser.New(cfg.Browser)
	a, err := audit.New(l, cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("configure auditor: %w", err)
	}
	slog.Info("browser launcher selected", "launcher", l.Name())
	return a, nil
}

// openStore opens the history backend named by cfg.Driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Backend, error) {
	switch cfg.Driver {
	case "", "none":
		return store.NewNop(), nil
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("store: WEBBOOST_POSTGRES_DSN is required for the postgres driver")
		}
		return postgres.New(ctx, cfg.PostgresDSN)
	case "redis":
		return redisstore.New(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// logWriter is where CLI logs go. Commands that print JSON to stdout log
// to stderr so the output stays machine readable.
var logWriter io.Writer = os.Stderr
