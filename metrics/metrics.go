package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webboost_audits_total",
			Help: "Total number of audits by outcome and error code",
		},
		[]string{"outcome", "code"},
	)

	AuditDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webboost_audit_duration_seconds",
			Help:    "End-to-end duration of audits in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60},
		},
		[]string{"outcome"},
	)

	BrowserLaunches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webboost_browser_launches_total",
			Help: "Total number of browser launches by strategy and result",
		},
		[]string{"launcher", "result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webboost_active_sessions",
			Help: "Number of browser sessions currently open",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webboost_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webboost_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// RecordAudit counts a finished audit. code is empty on success.
func RecordAudit(code string, d time.Duration) {
	outcome := "success"
	if code != "" {
		outcome = "failure"
	}
	AuditsTotal.WithLabelValues(outcome, code).Inc()
	AuditDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordLaunch counts a browser launch attempt.
func RecordLaunch(launcher string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BrowserLaunches.WithLabelValues(launcher, result).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// NewServer prepares a /metrics listener on port. Call ListenAndServe to
// start it.
func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{srv: &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// ListenAndServe blocks until the server stops. A graceful shutdown is
// not reported as an error.
func (s *Server) ListenAndServe() error {
	slog.Info("metrics server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
