package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/webboost/store"
)

// SubjectHeader carries the caller identity asserted by the upstream
// identity provider.
const SubjectHeader = "X-Auth-Subject"

const (
	subjectKey = "subject"
	anonymous  = store.AnonymousSubject
)

// Subject stores the request's subject in the gin context. Requests
// without the header are attributed to the anonymous subject.
func Subject() gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := strings.TrimSpace(c.GetHeader(SubjectHeader))
		if sub == "" {
			sub = anonymous
		}
		c.Set(subjectKey, sub)
		c.Next()
	}
}

// SubjectFrom returns the subject set by Subject, or "" if the middleware
// did not run.
func SubjectFrom(c *gin.Context) string {
	return c.GetString(subjectKey)
}
