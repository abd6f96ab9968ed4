// Package audit runs the single-shot page audit pipeline:
//
//	validate → provision → navigate → extract → close
//
// Each request gets its own browser session, which is closed on every
// exit path. Failures from any stage are returned as a typed
// models.AuditError inside a Result; nothing panics or escapes.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/webboost/browser"
	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/metrics"
	"github.com/use-agent/webboost/models"
)

// State is a step of the per-request state machine.
type State string

const (
	StateIdle         State = "idle"
	StateProvisioning State = "provisioning"
	StateNavigating   State = "navigating"
	StateExtracting   State = "extracting"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
	StateClosed       State = "closed"
)

// Auditor runs audits. It holds no per-request state and is safe for
// concurrent use; concurrent audits never share a browser.
type Auditor struct {
	launcher   browser.Launcher
	cfg        config.AuditConfig
	adSelector string
	active     atomic.Int32
}

// New creates an Auditor. It fails if a configured ad selector does not
// parse, so a typo is caught at startup rather than inside every page.
func New(l browser.Launcher, cfg config.AuditConfig) (*Auditor, error) {
	sel, err := AdSelector(cfg.ExtraAdSelectors)
	if err != nil {
		return nil, err
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 15 * time.Second
	}
	if cfg.RequestDeadline <= 0 {
		cfg.RequestDeadline = 60 * time.Second
	}
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		cfg.ViewportWidth, cfg.ViewportHeight = 390, 844
	}
	return &Auditor{launcher: l, cfg: cfg, adSelector: sel}, nil
}

// LauncherName reports the selected launch strategy.
func (a *Auditor) LauncherName() string {
	return a.launcher.Name()
}

// ActiveAudits is the number of audits currently holding a browser.
func (a *Auditor) ActiveAudits() int {
	return int(a.active.Load())
}

// Run audits rawURL. Invalid input is rejected before any browser is
// launched. The whole pipeline is bounded by the configured request
// deadline; navigation has its own shorter timeout.
func (a *Auditor) Run(ctx context.Context, rawURL string) Result {
	start := time.Now()
	log := slog.With("audit_id", uuid.NewString(), "url", rawURL)

	req := models.AuditRequest{URL: rawURL}
	if err := req.Validate(); err != nil {
		return a.finish(log, start, failure(rawURL, models.NewAuditError(
			models.ErrCodeInvalidInput, models.StageValidate, err.Error(), nil,
		)))
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestDeadline)
	defer cancel()

	log.Info("audit started", "launcher", a.launcher.Name())
	transition(log, StateIdle, StateProvisioning)

	sess, err := a.launcher.Launch(ctx)
	metrics.RecordLaunch(a.launcher.Name(), err)
	if err != nil {
		return a.finish(log, start, failure(req.URL,
			categorizeError(err, models.StageProvision, "failed to launch browser")))
	}

	a.active.Add(1)
	metrics.ActiveSessions.Inc()
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			log.Warn("browser close failed", "error", closeErr)
		}
		a.active.Add(-1)
		metrics.ActiveSessions.Dec()
		log.Debug("audit state", "state", StateClosed)
	}()

	transition(log, StateProvisioning, StateNavigating)
	page, aerr := a.navigate(ctx, sess, req.URL)
	if aerr != nil {
		return a.finish(log, start, failure(req.URL, aerr))
	}

	transition(log, StateNavigating, StateExtracting)
	pm, aerr := a.extract(ctx, page)
	if aerr != nil {
		return a.finish(log, start, failure(req.URL, aerr))
	}

	return a.finish(log, start, success(req.URL, pm))
}

// navigate opens the session's only page, applies the mobile viewport and
// loads url up to DOMContentLoaded. Subresources are not awaited.
func (a *Auditor) navigate(ctx context.Context, sess browser.Session, url string) (browser.Page, *models.AuditError) {
	page, err := sess.NewPage(ctx)
	if err != nil {
		return nil, categorizeError(err, models.StageNavigate, "failed to open page")
	}

	if err := page.SetViewport(a.cfg.ViewportWidth, a.cfg.ViewportHeight); err != nil {
		return nil, categorizeError(err, models.StageNavigate, "failed to set mobile viewport")
	}

	navCtx, cancel := context.WithTimeout(ctx, a.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Navigate(navCtx, url); err != nil {
		msg := "navigation to target URL failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("navigation timed out after %s", a.cfg.NavigationTimeout)
		}
		return nil, categorizeError(err, models.StageNavigate, msg)
	}
	return page, nil
}

// extract evaluates extractScript in the page and computes the metrics.
func (a *Auditor) extract(ctx context.Context, page browser.Page) (models.PageMetrics, *models.AuditError) {
	val, err := page.Eval(ctx, extractScript, a.adSelector)
	if err != nil {
		return models.PageMetrics{}, categorizeError(err, models.StageExtract, "page evaluation failed")
	}

	m, err := decodeMeasurements(val)
	if err != nil {
		return models.PageMetrics{}, models.NewAuditError(
			models.ErrCodeExtraction, models.StageExtract, "malformed page measurements", err,
		)
	}
	return Compute(m), nil
}

// finish logs and records the terminal state of an audit.
func (a *Auditor) finish(log *slog.Logger, start time.Time, r Result) Result {
	elapsed := time.Since(start)
	metrics.RecordAudit(r.Code(), elapsed)

	if r.OK() {
		transition(log, StateExtracting, StateSucceeded)
		log.Info("audit completed",
			"mobileAdDensity", r.Metrics.MobileAdDensity,
			"hasSchema", r.Metrics.HasSchema,
			"wordCount", r.Metrics.WordCount,
			"duration", elapsed,
		)
		return r
	}

	log.Debug("audit state", "state", StateFailed)
	level := slog.LevelWarn
	if r.Err.Code == models.ErrCodeInvalidInput {
		level = slog.LevelInfo
	}
	log.Log(context.Background(), level, "audit failed",
		"stage", r.Err.Stage,
		"code", r.Err.Code,
		"error", r.Err.Error(),
		"duration", elapsed,
	)
	return r
}

func transition(log *slog.Logger, from, to State) {
	log.Debug("audit state", "from", from, "state", to)
}

// categorizeError wraps raw errors into typed AuditErrors for the given
// stage. Deadline errors during navigation become NAVIGATION_TIMEOUT.
func categorizeError(err error, stage models.Stage, msg string) *models.AuditError {
	if errors.Is(err, context.Canceled) {
		msg = "request canceled"
	}

	var code string
	switch stage {
	case models.StageProvision:
		code = models.ErrCodeProvision
	case models.StageNavigate:
		code = models.ErrCodeNavigation
		if errors.Is(err, context.DeadlineExceeded) {
			code = models.ErrCodeNavigationTimeout
		}
	case models.StageExtract:
		code = models.ErrCodeExtraction
	default:
		code = models.ErrCodeInternal
	}
	return models.NewAuditError(code, stage, msg, err)
}
