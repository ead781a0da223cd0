// File: rules.go
// Title: Field Rules
// Description: Integer and range rules for numeric fields given as Go
//              integers, durations or decimal text.
// Author: vozinv maintainers
// Version: v0.2.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.2.0: Replaces the generic float helpers

package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
)

// Rule is a single check on one field
type Rule struct {
	field    string
	code     mdwerror.Code
	message  string
	expected interface{}
	check    func(value interface{}) bool
}

// Validate implements Validator
func (r Rule) Validate(value interface{}) ValidationResult {
	if r.check(value) {
		return NewValidationResult()
	}
	result := NewValidationErrorWithField(r.code, r.field, r.message, value)
	result.Errors[0].Expected = r.expected
	return result
}

// WithMessage replaces the message reported on failure
func (r Rule) WithMessage(message string) Rule {
	r.message = message
	return r
}

// Integer accepts integer values and decimal text that fits an int64.
// Failures carry CodeInvalidFormat.
func Integer(field string) Rule {
	return Rule{
		field:    field,
		code:     mdwerror.CodeInvalidFormat,
		message:  field + " must be an integer",
		expected: "integer",
		check: func(value interface{}) bool {
			_, err := ToInt64(value)
			return err == nil
		},
	}
}

// Min accepts integers of at least min. Failures carry
// CodeValueOutOfRange.
func Min(field string, min int64) Rule {
	return Rule{
		field:    field,
		code:     mdwerror.CodeValueOutOfRange,
		message:  fmt.Sprintf("%s must be at least %d", field, min),
		expected: fmt.Sprintf(">= %d", min),
		check: func(value interface{}) bool {
			v, err := ToInt64(value)
			return err == nil && v >= min
		},
	}
}

// Range accepts integers in [min, max]. Failures carry
// CodeValueOutOfRange.
func Range(field string, min, max int64) Rule {
	return Rule{
		field:    field,
		code:     mdwerror.CodeValueOutOfRange,
		message:  fmt.Sprintf("%s must be between %d and %d", field, min, max),
		expected: fmt.Sprintf("%d..%d", min, max),
		check: func(value interface{}) bool {
			v, err := ToInt64(value)
			return err == nil && v >= min && v <= max
		},
	}
}

// ToInt64 converts integer kinds, durations and trimmed base-10 text to
// int64
func ToInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case time.Duration:
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", value)
	}
}
