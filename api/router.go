package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/webboost/api/handler"
	"github.com/use-agent/webboost/api/middleware"
	"github.com/use-agent/webboost/audit"
	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/store"
	"github.com/use-agent/webboost/webhook"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → Metrics → Subject
//	API:     RateLimit
//
// Health is outside the rate limit so monitoring probes always work.
func NewRouter(a *audit.Auditor, st store.Backend, wh *webhook.Notifier, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.Subject())

	r.GET("/api/v1/health", handler.Health(a, cfg.Audit.DegradedAbove, startTime))

	limit := middleware.RateLimit(cfg.RateLimit)
	analyze := handler.Analyze(a, st, wh)

	// Legacy unversioned path kept for existing dashboards.
	legacy := r.Group("/api", limit)
	legacy.POST("/analyze", analyze)

	v1 := r.Group("/api/v1", limit)
	v1.POST("/analyze", analyze)
	v1.GET("/audits", handler.ListAudits(st, cfg.Store.HistoryLimit))

	return r
}
