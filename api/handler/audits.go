package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/webboost/api/middleware"
	"github.com/use-agent/webboost/models"
	"github.com/use-agent/webboost/store"
)

// ListAudits returns a handler for GET /api/v1/audits.
//
// Returns the caller's most recent audits, newest first. The optional
// ?limit= query parameter may lower, but never raise, maxLimit.
func ListAudits(st store.Backend, maxLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				middleware.AbortWithError(c, http.StatusBadRequest, models.ErrCodeInvalidInput,
					"limit must be a positive integer")
				return
			}
			if maxLimit <= 0 || n < maxLimit {
				limit = n
			}
		}

		subject := middleware.SubjectFrom(c)
		records, err := st.List(c.Request.Context(), store.Filter{Subject: subject, Limit: limit})
		if err != nil {
			slog.Error("failed to list audits", "subject", subject, "error", err)
			c.Header(middleware.ErrorCodeHeader, models.ErrCodeInternal)
			c.JSON(http.StatusInternalServerError, models.HistoryResponse{
				Success: false,
				Audits:  []models.AuditRecord{},
				Error:   "failed to load audit history",
			})
			return
		}

		audits := make([]models.AuditRecord, 0, len(records))
		for _, r := range records {
			audits = append(audits, r.ToModel())
		}
		c.JSON(http.StatusOK, models.HistoryResponse{Success: true, Audits: audits})
	}
}
