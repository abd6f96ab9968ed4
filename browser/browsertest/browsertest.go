// Package browsertest provides in-memory doubles for browser.Launcher,
// browser.Session and browser.Page so the audit pipeline can be tested
// without Chrome.
package browsertest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/use-agent/webboost/browser"
	"github.com/ysmood/gson"
)

// EvalFunc answers Page.Eval calls.
type EvalFunc func(ctx context.Context, js string, args ...any) (gson.JSON, error)

// Launcher is a fake browser.Launcher that counts launches and hands out
// sessions built by NewSession (or a single fixed Session).
type Launcher struct {
	// Err, if set, fails every launch.
	Err error

	// Session is returned by Launch when NewSession is nil.
	Session *Session

	// NewSession builds a fresh session per launch.
	NewSession func() *Session

	launches atomic.Int32
	mu       sync.Mutex
	issued   []*Session
}

var _ browser.Launcher = (*Launcher)(nil)

func (l *Launcher) Name() string { return "fake" }

func (l *Launcher) Launch(_ context.Context) (browser.Session, error) {
	l.launches.Add(1)
	if l.Err != nil {
		return nil, l.Err
	}

	s := l.Session
	if l.NewSession != nil {
		s = l.NewSession()
	}
	if s == nil {
		return nil, errors.New("browsertest: no session configured")
	}

	l.mu.Lock()
	l.issued = append(l.issued, s)
	l.mu.Unlock()
	return s, nil
}

// Launches is the number of Launch calls so far.
func (l *Launcher) Launches() int { return int(l.launches.Load()) }

// Issued returns every session handed out so far.
func (l *Launcher) Issued() []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Session(nil), l.issued...)
}

// Session is a fake browser.Session.
type Session struct {
	Page    *Page
	PageErr error

	pages  atomic.Int32
	closes atomic.Int32
}

var _ browser.Session = (*Session)(nil)

func (s *Session) NewPage(ctx context.Context) (browser.Page, error) {
	s.pages.Add(1)
	if s.PageErr != nil {
		return nil, s.PageErr
	}
	if s.Page == nil {
		return nil, errors.New("browsertest: no page configured")
	}
	return s.Page, nil
}

func (s *Session) Close() error {
	s.closes.Add(1)
	return nil
}

// Closes is the number of Close calls.
func (s *Session) Closes() int { return int(s.closes.Load()) }

// Pages is the number of NewPage calls.
func (s *Session) Pages() int { return int(s.pages.Load()) }

// Page is a fake browser.Page.
type Page struct {
	// NavigateErr fails Navigate immediately.
	NavigateErr error

	// Hang makes Navigate block until its context is done, simulating an
	// unreachable host.
	Hang bool

	// OnEval answers Eval calls. A nil OnEval returns a null value.
	OnEval EvalFunc

	mu          sync.Mutex
	width       int
	height      int
	navigatedTo string
}

var _ browser.Page = (*Page)(nil)

func (p *Page) SetViewport(width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	p.navigatedTo = url
	p.mu.Unlock()

	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	if p.Hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return ctx.Err()
}

func (p *Page) Eval(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	if err := ctx.Err(); err != nil {
		return gson.JSON{}, err
	}
	if p.OnEval == nil {
		return gson.New(nil), nil
	}
	return p.OnEval(ctx, js, args...)
}

// Viewport returns the last viewport set.
func (p *Page) Viewport() (width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// NavigatedTo returns the last URL passed to Navigate.
func (p *Page) NavigatedTo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigatedTo
}

// Returning builds an EvalFunc that always returns v.
func Returning(v any) EvalFunc {
	return func(context.Context, string, ...any) (gson.JSON, error) {
		return gson.New(v), nil
	}
}

// Failing builds an EvalFunc that always fails with err.
func Failing(err error) EvalFunc {
	return func(context.Context, string, ...any) (gson.JSON, error) {
		return gson.JSON{}, err
	}
}
