// File: interfaces.go
// Title: Core Validation Interfaces and Types
// Description: Validator interface, validation results and their conversion
//              into foundation errors.
// Author: vozinv maintainers
// Version: v0.2.0
// Created: 2026-03-02
// Modified: 2026-10-17
//
// Change History:
// - 2026-03-02 v0.1.0: Initial validation interfaces implementation
// - 2026-10-17 v0.2.0: Error codes are mdwerror codes

package validation

import (
	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
)

// Validator checks one value
type Validator interface {
	Validate(value interface{}) ValidationResult
}

// ValidationResult is the outcome of one or more validators
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError describes a single failed check
type ValidationError struct {
	Code     mdwerror.Code `json:"code"`
	Field    string        `json:"field,omitempty"`
	Message  string        `json:"message"`
	Value    interface{}   `json:"value,omitempty"`
	Expected interface{}   `json:"expected,omitempty"`
}

// NewValidationResult creates a successful validation result
func NewValidationResult() ValidationResult {
	return ValidationResult{Valid: true}
}

// NewValidationErrorWithField creates a failed result for field
func NewValidationErrorWithField(code mdwerror.Code, field, message string, value interface{}) ValidationResult {
	return ValidationResult{
		Errors: []ValidationError{{
			Code:    code,
			Field:   field,
			Message: message,
			Value:   value,
		}},
	}
}

// FirstError returns the first validation error, or nil if validation passed
func (r ValidationResult) FirstError() *ValidationError {
	if len(r.Errors) == 0 {
		return nil
	}
	return &r.Errors[0]
}

// ErrorMessages returns all error messages in order
func (r ValidationResult) ErrorMessages() []string {
	messages := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		messages[i] = err.Message
	}
	return messages
}

// ToError converts a failed result into a *mdwerror.Error built from the
// first failure: its message and code, with field, value and expected as
// details. It returns nil when the result is valid.
func (r ValidationResult) ToError(operation string) error {
	if r.Valid {
		return nil
	}

	first := r.FirstError()
	if first == nil {
		return mdwerror.New("validation failed").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation(operation)
	}

	code := first.Code
	if code == "" {
		code = mdwerror.CodeInvalidInput
	}
	err := mdwerror.New(first.Message).
		WithCode(code).
		WithOperation(operation)
	if first.Field != "" {
		err = err.WithDetail("field", first.Field)
	}
	if first.Value != nil {
		err = err.WithDetail("value", first.Value)
	}
	if first.Expected != nil {
		err = err.WithDetail("expected", first.Expected)
	}
	if len(r.Errors) > 1 {
		err = err.WithDetail("total_errors", len(r.Errors)).
			WithDetail("messages", r.ErrorMessages())
	}
	return err
}

// Combine merges results; the merged result is valid only when all are
func Combine(results ...ValidationResult) ValidationResult {
	combined := NewValidationResult()
	for _, result := range results {
		if !result.Valid {
			combined.Valid = false
			combined.Errors = append(combined.Errors, result.Errors...)
		}
	}
	return combined
}
