// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level of an error.
// Author: vozinv maintainers
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial implementation

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is an operator mistake, e.g. a malformed edit
	SeverityLow Severity = iota

	// SeverityMedium affects one request but the process keeps serving
	SeverityMedium

	// SeverityHigh prevents a component from working
	SeverityHigh

	// SeverityCritical makes the process unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines the default severity for a code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeServiceInitialization, CodeMissingConfig:
		return SeverityCritical
	case CodeServiceUnavailable, CodeConfigError, CodeInvalidConfig, CodeInternal:
		return SeverityHigh
	case CodeNetworkError, CodeTimeout:
		return SeverityMedium
	case CodeInvalidInput, CodeInvalidFormat, CodeValueOutOfRange, CodeInvalidOperation, CodeNotFound:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
