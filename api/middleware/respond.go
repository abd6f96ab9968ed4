package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/webboost/models"
)

// ErrorCodeHeader exposes the machine-readable error code of a failed
// request. The JSON body only carries the message.
const ErrorCodeHeader = "X-Audit-Error-Code"

// AbortWithError writes the failure envelope and stops the chain.
func AbortWithError(c *gin.Context, status int, code, message string) {
	c.Header(ErrorCodeHeader, code)
	c.AbortWithStatusJSON(status, models.AuditResponse{
		Success: false,
		Error:   message,
	})
}
