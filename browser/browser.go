// Package browser provisions isolated headless Chrome instances through
// go-rod. Every Launch spawns a new browser process owned by the returned
// Session; nothing is pooled or shared between sessions.
package browser

import (
	"context"

	"github.com/use-agent/webboost/config"
	"github.com/ysmood/gson"
)

// Launcher starts a browser process and returns the session that owns it.
// Implementations are selected once at startup (see New).
type Launcher interface {
	// Name identifies the launch strategy ("local" or "portable").
	Name() string

	// Launch spawns a browser. The error wraps the underlying cause.
	Launch(ctx context.Context) (Session, error)
}

// Session is an exclusive handle to one browser process.
type Session interface {
	// NewPage opens a page in the browser.
	NewPage(ctx context.Context) (Page, error)

	// Close kills the browser process and removes its profile. It is
	// safe to call more than once; only the first call has an effect.
	Close() error
}

// Page is a single browser tab.
type Page interface {
	// SetViewport sets the emulated device metrics in CSS pixels.
	SetViewport(width, height int) error

	// Navigate loads url and returns once DOMContentLoaded has fired,
	// or with ctx's error if it expires first.
	Navigate(ctx context.Context, url string) error

	// Eval runs a JS function in the page and returns its value as JSON.
	Eval(ctx context.Context, js string, args ...any) (gson.JSON, error)
}

// New selects the launch strategy from cfg: a configured local binary
// wins, otherwise the pinned portable build is used.
func New(cfg config.BrowserConfig) Launcher {
	if cfg.UsesLocalBin() {
		return NewLocalLauncher(cfg.LocalBin, cfg.Stealth)
	}
	return NewPortableLauncher(cfg.PortableDir, cfg.Stealth)
}
