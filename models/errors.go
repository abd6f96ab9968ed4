package models

import "fmt"

// Error codes used in logs, metrics and the X-Audit-Error-Code header.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeProvision         = "PROVISION_FAILED"
	ErrCodeNavigation        = "NAVIGATION_FAILED"
	ErrCodeNavigationTimeout = "NAVIGATION_TIMEOUT"
	ErrCodeExtraction        = "EXTRACTION_FAILED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// Stage names the pipeline step an AuditError came from.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageProvision Stage = "provision"
	StageNavigate  Stage = "navigate"
	StageExtract   Stage = "extract"
)

// AuditError is the internal error type carrying an error code and the
// pipeline stage that produced it. It supports wrapping via Unwrap.
type AuditError struct {
	Code    string
	Stage   Stage
	Message string
	Err     error // wrapped original error
}

func (e *AuditError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}

// NewAuditError creates a new AuditError.
func NewAuditError(code string, stage Stage, message string, err error) *AuditError {
	return &AuditError{Code: code, Stage: stage, Message: message, Err: err}
}

// UserMessage is the human-readable text returned to API callers. The
// underlying cause is included so callers see why the page failed.
func (e *AuditError) UserMessage() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}
