package models

import (
	"errors"
	"net/url"
	"strings"
)

// AuditRequest is the payload for POST /api/analyze.
type AuditRequest struct {
	// URL is the page to audit. Required; must be an absolute http(s) URL.
	URL string `json:"url"`
}

// Validate checks the request before any browser work is done.
func (r *AuditRequest) Validate() error {
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" {
		return errors.New("URL required")
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return errors.New("URL is not valid")
	}
	if !u.IsAbs() || u.Host == "" {
		return errors.New("URL must be absolute")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL scheme must be http or https")
	}
	return nil
}
