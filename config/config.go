package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// AppName is used for XDG directory names.
const AppName = "webboost"

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Audit     AuditConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Metrics   MetricsConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig selects and tunes the browser launcher.
type BrowserConfig struct {
	// LocalBin is the path of a locally installed Chrome. When set, the
	// local launcher is used with the sandbox disabled; otherwise the
	// pinned portable build is fetched and launched.
	LocalBin string

	// PortableDir is where the portable browser build is unpacked.
	PortableDir string // default: $XDG_CACHE_HOME/webboost/browser

	// Stealth injects the go-rod stealth script before navigation.
	Stealth bool // default: false
}

// UsesLocalBin reports whether the local-binary launcher is selected.
func (c BrowserConfig) UsesLocalBin() bool {
	return c.LocalBin != ""
}

// AuditConfig controls the per-request audit pipeline.
type AuditConfig struct {
	// NavigationTimeout bounds the navigation to DOMContentLoaded.
	NavigationTimeout time.Duration // default: 15s

	// RequestDeadline bounds the whole pipeline, extraction included.
	RequestDeadline time.Duration // default: 60s

	// ViewportWidth and ViewportHeight are the emulated mobile viewport.
	ViewportWidth  int // default: 390
	ViewportHeight int // default: 844

	// ExtraAdSelectors are appended to the built-in ad selectors.
	ExtraAdSelectors []string

	// DegradedAbove marks health as degraded when more audits than this
	// hold a browser at once. 0 disables the check.
	DegradedAbove int // default: 8
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per identity.
	Burst int // default: 3
}

// StoreConfig selects the audit history backend.
type StoreConfig struct {
	// Driver is one of "sqlite", "postgres", "redis" or "none".
	Driver string // default: "sqlite"

	SQLitePath  string // default: $XDG_DATA_HOME/webboost/audits.db
	PostgresDSN string
	RedisAddr   string

	// HistoryLimit caps the number of audits returned per subject.
	HistoryLimit int // default: 20
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Port for the /metrics listener. 0 disables it.
	Port int // default: 9090
}

// WebhookConfig controls audit.completed notifications.
type WebhookConfig struct {
	URL    string
	Secret string
}

// Enabled reports whether a webhook endpoint is configured.
func (c WebhookConfig) Enabled() bool {
	return c.URL != ""
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("WEBBOOST_HOST", "0.0.0.0"),
			Port: envIntOr("WEBBOOST_PORT", 8080),
			Mode: envOr("WEBBOOST_MODE", "release"),
		},
		Browser: BrowserConfig{
			LocalBin:    envOr("CHROME_EXECUTABLE_PATH", os.Getenv("WEBBOOST_BROWSER_BIN")),
			PortableDir: envOr("WEBBOOST_BROWSER_DIR", filepath.Join(xdg.CacheHome, AppName, "browser")),
			Stealth:     envBoolOr("WEBBOOST_STEALTH", false),
		},
		Audit: AuditConfig{
			NavigationTimeout: envDurationOr("WEBBOOST_NAV_TIMEOUT", 15*time.Second),
			RequestDeadline:   envDurationOr("WEBBOOST_REQUEST_DEADLINE", 60*time.Second),
			ViewportWidth:     envIntOr("WEBBOOST_VIEWPORT_WIDTH", 390),
			ViewportHeight:    envIntOr("WEBBOOST_VIEWPORT_HEIGHT", 844),
			ExtraAdSelectors:  envSliceOr("WEBBOOST_AD_SELECTORS", nil),
			DegradedAbove:     envIntOr("WEBBOOST_DEGRADED_ABOVE", 8),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("WEBBOOST_RATE_RPS", 1.0),
			Burst:             envIntOr("WEBBOOST_RATE_BURST", 3),
		},
		Store: StoreConfig{
			Driver:       envOr("WEBBOOST_STORE", "sqlite"),
			SQLitePath:   envOr("WEBBOOST_SQLITE_PATH", filepath.Join(xdg.DataHome, AppName, "audits.db")),
			PostgresDSN:  os.Getenv("WEBBOOST_POSTGRES_DSN"),
			RedisAddr:    envOr("WEBBOOST_REDIS_ADDR", "127.0.0.1:6379"),
			HistoryLimit: envIntOr("WEBBOOST_HISTORY_LIMIT", 20),
		},
		Metrics: MetricsConfig{
			Port: envIntOr("WEBBOOST_METRICS_PORT", 9090),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("WEBBOOST_WEBHOOK_URL"),
			Secret: os.Getenv("WEBBOOST_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("WEBBOOST_LOG_LEVEL", "info"),
			Format: envOr("WEBBOOST_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
