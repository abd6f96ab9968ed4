package audit

import "github.com/use-agent/webboost/models"

// Result is the outcome of one audit: exactly one of Metrics or Err is set.
type Result struct {
	URL     string
	Metrics *models.PageMetrics
	Err     *models.AuditError
}

func success(url string, m models.PageMetrics) Result {
	return Result{URL: url, Metrics: &m}
}

func failure(url string, err *models.AuditError) Result {
	return Result{URL: url, Err: err}
}

// OK reports whether the audit succeeded.
func (r Result) OK() bool {
	return r.Err == nil && r.Metrics != nil
}

// Code returns the error code, or "" on success.
func (r Result) Code() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}

// Response collapses the result into the public JSON envelope. Failures
// never carry partial metrics.
func (r Result) Response() models.AuditResponse {
	if r.OK() {
		return models.AuditResponse{Success: true, Data: r.Metrics}
	}
	msg := "audit failed"
	if r.Err != nil {
		msg = r.Err.UserMessage()
	}
	return models.AuditResponse{Success: false, Error: msg}
}
