package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// closeTimeout bounds the polite Browser.close call. A wedged CDP
// connection falls through to killing the process.
var closeTimeout = 5 * time.Second

// process is the OS-level handle of a launched browser.
// *launcher.Launcher implements it.
type process interface {
	Kill()
	Cleanup()
}

// rodSession owns one Chrome process started by a launcher.Launcher.
type rodSession struct {
	browser *rod.Browser
	proc    process
	stealth bool

	once     sync.Once
	closeErr error
}

// start launches the process described by l and connects to it. On a
// failed connect the process is killed before returning.
func start(l *launcher.Launcher, useStealth bool) (*rodSession, error) {
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL, "pid", l.PID())

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	return &rodSession{browser: b, proc: l, stealth: useStealth}, nil
}

func (s *rodSession) NewPage(ctx context.Context) (Page, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("browser: open page: %w", err)
	}
	// Detach from the request context so later calls choose their own.
	page = page.Context(context.Background())

	// Stealth must be installed before the first navigation.
	if s.stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}
	return &rodPage{page: page}, nil
}

// Close uses the browser's own background context bounded by
// closeTimeout, so teardown still works after the request deadline has
// passed and never hangs on a dead connection.
func (s *rodSession) Close() error {
	s.once.Do(func() {
		if err := s.browser.Timeout(closeTimeout).Close(); err != nil {
			s.closeErr = fmt.Errorf("browser: close: %w", err)
			s.proc.Kill()
		}
		// Waits for the process to exit and removes the temp profile.
		s.proc.Cleanup()
	})
	return s.closeErr
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) SetViewport(width, height int) error {
	return p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

// Navigate loads url and waits for DOMContentLoaded of the new main
// document. Lifecycle events of child frames (ad iframes injected during
// parsing) and of the previous document are ignored. The event stream is
// subscribed BEFORE navigating so a fast page cannot be missed.
func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)

	if err := (proto.PageSetLifecycleEventsEnabled{Enabled: true}).Call(pg); err != nil {
		return fmt.Errorf("browser: enable lifecycle events: %w", err)
	}
	events := pg.Event()

	res, err := proto.PageNavigate{URL: url}.Call(pg)
	if err != nil {
		return err
	}
	if res.ErrorText != "" {
		return &rod.NavigationError{Reason: res.ErrorText}
	}
	// Same-document navigations have no loader and fire no lifecycle.
	if res.LoaderID == "" {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			var e proto.PageLifecycleEvent
			if msg.Load(&e) && isMainDOMContentLoaded(&e, p.page.FrameID, res.LoaderID) {
				return nil
			}
		}
	}
}

// isMainDOMContentLoaded reports whether e is DOMContentLoaded of the
// document loaded by loaderID in the main frame.
func isMainDOMContentLoaded(e *proto.PageLifecycleEvent, mainFrame proto.PageFrameID, loaderID proto.NetworkLoaderID) bool {
	return e.Name == proto.PageLifecycleEventNameDOMContentLoaded &&
		e.FrameID == mainFrame &&
		e.LoaderID == loaderID
}

func (p *rodPage) Eval(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}
