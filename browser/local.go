package browser

import (
	"context"
	"errors"

	"github.com/go-rod/rod/lib/launcher"
)

// LocalLauncher starts a Chrome binary already installed on the host.
// The host is trusted, so the sandbox is disabled.
type LocalLauncher struct {
	bin     string
	stealth bool
}

// NewLocalLauncher returns a launcher for the Chrome binary at bin.
func NewLocalLauncher(bin string, useStealth bool) *LocalLauncher {
	return &LocalLauncher{bin: bin, stealth: useStealth}
}

func (l *LocalLauncher) Name() string { return "local" }

func (l *LocalLauncher) Launch(ctx context.Context) (Session, error) {
	if l.bin == "" {
		return nil, errors.New("browser: local binary path is empty")
	}

	ln := launcher.New().
		Context(ctx).
		Bin(l.bin).
		Headless(true).
		NoSandbox(true)

	return start(ln, l.stealth)
}
