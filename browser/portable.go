package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// PortableRevision is the pinned Chromium snapshot fetched when no local
// binary is configured. It tracks the revision go-rod is tested against.
const PortableRevision = launcher.RevisionDefault

// portableFlags are the arguments recommended for running the snapshot
// build in a constrained serverless container.
var portableFlags = []flags.Flag{
	"disable-gpu",
	"disable-dev-shm-usage",
	"disable-extensions",
	"disable-background-networking",
	"disable-default-apps",
	"no-first-run",
	"no-zygote",
	"mute-audio",
	"hide-scrollbars",
}

// portableWindowSize is the default viewport the page starts with before
// the mobile metrics override is applied.
const portableWindowSize = "1920,1080"

// PortableLauncher downloads the pinned Chromium snapshot into dir (once;
// later calls reuse the unpacked build) and launches it.
type PortableLauncher struct {
	dir      string
	revision int
	host     launcher.Host
	stealth  bool
}

// NewPortableLauncher returns a launcher for the pinned snapshot stored
// under dir.
func NewPortableLauncher(dir string, useStealth bool) *PortableLauncher {
	return &PortableLauncher{
		dir:      dir,
		revision: PortableRevision,
		host:     launcher.HostGoogle,
		stealth:  useStealth,
	}
}

func (p *PortableLauncher) Name() string { return "portable" }

func (p *PortableLauncher) Launch(ctx context.Context) (Session, error) {
	bin, err := p.resolve(ctx)
	if err != nil {
		return nil, err
	}

	ln := launcher.New().
		Context(ctx).
		Bin(bin).
		Headless(true).
		NoSandbox(true).
		Set(flags.Flag("window-size"), portableWindowSize)
	for _, f := range portableFlags {
		ln = ln.Set(f)
	}

	return start(ln, p.stealth)
}

// resolve returns the executable path, downloading the snapshot first if
// it is not already present in dir.
func (p *PortableLauncher) resolve(ctx context.Context) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	b.RootDir = p.dir
	b.Revision = p.revision
	b.Hosts = []launcher.Host{p.host}
	b.Logger = downloadLogger{}

	bin, err := b.Get()
	if err != nil {
		return "", fmt.Errorf("browser: resolve portable revision %d: %w", p.revision, err)
	}
	return bin, nil
}

// downloadLogger routes the downloader's progress lines to slog.
type downloadLogger struct{}

func (downloadLogger) Println(v ...interface{}) {
	slog.Debug("browser download", "msg", fmt.Sprint(v...))
}
