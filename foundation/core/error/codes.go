// File: codes.go
// Title: Error Code Definitions
// Description: Error codes used across vozinv to classify failures for
//              logging, CLI output and WebSocket error frames.
// Author: vozinv maintainers
// Version: v0.2.0
// Created: 2026-03-02
// Modified: 2026-09-14
//
// Change History:
// - 2026-03-02 v0.1.0: Initial implementation
// - 2026-09-14 v0.2.0: Dropped codes without a caller

package error

// Code classifies an error
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Inventory editing
	CodeInvalidFormat    Code = "INVALID_FORMAT"
	CodeValueOutOfRange  Code = "VALUE_OUT_OF_RANGE"
	CodeInvalidOperation Code = "INVALID_OPERATION"

	// Service and transport
	CodeServiceUnavailable    Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError          Code = "NETWORK_ERROR"
	CodeServiceInitialization Code = "SERVICE_INITIALIZATION"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeInvalidFormat, CodeValueOutOfRange, CodeInvalidOperation,
		CodeServiceUnavailable, CodeNetworkError, CodeServiceInitialization,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeInvalidFormat, CodeValueOutOfRange, CodeInvalidOperation:
		return "inventory"
	case CodeServiceUnavailable, CodeNetworkError, CodeServiceInitialization:
		return "service"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// HTTPStatus returns the HTTP status code matching this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return 404
	case CodeInvalidInput, CodeInvalidFormat, CodeValueOutOfRange:
		return 400
	case CodeInvalidOperation:
		return 409
	case CodeTimeout:
		return 408
	case CodeServiceUnavailable:
		return 503
	default:
		return 500
	}
}
