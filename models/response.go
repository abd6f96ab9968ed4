package models

// PageMetrics are the monetization signals measured on one page.
type PageMetrics struct {
	// MobileAdDensity is the ad height as a rounded percentage of the
	// document's scroll height. It can exceed 100 when ads overlap.
	MobileAdDensity int `json:"mobileAdDensity"`

	// HasSchema reports a Recipe JSON-LD marker on the page.
	HasSchema bool `json:"hasSchema"`

	// WordCount is the number of whitespace-separated tokens in the
	// rendered body text.
	WordCount int `json:"wordCount"`
}

// AuditResponse is the JSON envelope for POST /api/analyze.
type AuditResponse struct {
	Success bool         `json:"success"`
	Data    *PageMetrics `json:"data,omitempty"`

	// Error is populated only when Success is false.
	Error string `json:"error,omitempty"`
}

// AuditRecord is one stored audit as returned by GET /api/v1/audits.
type AuditRecord struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	MobileAdDensity int    `json:"mobileAdDensity"`
	HasSchema       bool   `json:"hasSchema"`
	WordCount       int    `json:"wordCount"`
	Status          string `json:"status"`
	Timestamp       int64  `json:"timestamp"` // unix milliseconds
}

// HistoryResponse is the response for GET /api/v1/audits.
type HistoryResponse struct {
	Success bool          `json:"success"`
	Audits  []AuditRecord `json:"audits"`
	Error   string        `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"` // "healthy" or "degraded"
	Uptime       string `json:"uptime"`
	Launcher     string `json:"launcher"`
	ActiveAudits int    `json:"active_audits"`
	Version      string `json:"version"`
}
