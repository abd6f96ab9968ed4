package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/webboost/api/middleware"
	"github.com/use-agent/webboost/audit"
	"github.com/use-agent/webboost/models"
	"github.com/use-agent/webboost/store"
	"github.com/use-agent/webboost/webhook"
)

// saveTimeout bounds persisting a finished audit. It is detached from the
// request context so a client disconnect does not lose the record.
const saveTimeout = 5 * time.Second

// Analyze returns a handler for POST /api/analyze and /api/v1/analyze.
//
// Flow:
//  1. Parse the body. A missing url is rejected by the auditor before any
//     browser is launched.
//  2. Auditor.Run → metrics or a typed failure.
//  3. On success, persist the record for the caller's subject and fire the
//     audit.completed webhook. Neither can turn a success into a failure.
func Analyze(a *audit.Auditor, st store.Backend, wh *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AuditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, models.ErrCodeInvalidInput,
				"invalid request body: "+err.Error())
			return
		}

		res := a.Run(c.Request.Context(), req.URL)
		if !res.OK() {
			c.Header(middleware.ErrorCodeHeader, res.Code())
			c.JSON(statusFor(res.Code()), res.Response())
			return
		}

		subject := middleware.SubjectFrom(c)
		rec := store.NewRecord(subject, res.URL, *res.Metrics)

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), saveTimeout)
		defer cancel()
		if err := st.Save(ctx, rec); err != nil {
			slog.Warn("failed to persist audit",
				"url", res.URL,
				"subject", rec.Subject,
				"error", err,
			)
		} else {
			wh.Notify(webhook.NewAuditCompleted(rec.Subject, rec.ToModel()))
		}

		c.JSON(http.StatusOK, res.Response())
	}
}

// statusFor translates error codes to HTTP status codes.
func statusFor(code string) int {
	switch code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNavigationTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
