package entity

import "time"

// ErrorCategory classifies a recorded failure by origin.
type ErrorCategory string

const (
	ErrorCategoryNetwork    ErrorCategory = "network"
	ErrorCategoryBrowser    ErrorCategory = "browser"
	ErrorCategoryParsing    ErrorCategory = "parsing"
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryAPI        ErrorCategory = "api"
	ErrorCategorySystem     ErrorCategory = "system"
	ErrorCategoryUnknown    ErrorCategory = "unknown"
)

// ErrorSeverity grades a recorded failure.
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// ErrorInfo is an immutable record of a caught error. Only the Resolved flag
// may change after creation; core logic never reads it.
type ErrorInfo struct {
	Timestamp    time.Time         `json:"timestamp"`
	ErrorType    string            `json:"error_type"`
	ErrorMessage string            `json:"error_message"`
	Category     ErrorCategory     `json:"category"`
	Severity     ErrorSeverity     `json:"severity"`
	Context      map[string]string `json:"context,omitempty"`
	RetryCount   int               `json:"retry_count"`
	Resolved     bool              `json:"resolved"`
}
