package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/webboost/audit"
	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports degraded when more than maxActive audits hold a browser.
func Health(a *audit.Auditor, maxActive int, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := a.ActiveAudits()

		status := "healthy"
		if maxActive > 0 && active > maxActive {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       status,
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			Launcher:     a.LauncherName(),
			ActiveAudits: active,
			Version:      config.Version,
		})
	}
}
