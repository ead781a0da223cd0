// File: chain.go
// Title: Validator Chain Implementation
// Description: Runs validators for one value in order and combines their
//              results, optionally stopping at the first failure.
// Author: vozinv maintainers
// Version: v0.2.0
// Created: 2026-03-02
// Modified: 2026-10-17
//
// Change History:
// - 2026-03-02 v0.1.0: Initial validator chain implementation
// - 2026-10-17 v0.2.0: Dropped context plumbing and parallel validators

package validation

// ValidatorChain runs validators sequentially against one value
type ValidatorChain struct {
	validators       []Validator
	stopOnFirstError bool
}

// NewValidatorChain creates an empty chain
func NewValidatorChain() *ValidatorChain {
	return &ValidatorChain{}
}

// Add appends a validator to the chain
func (c *ValidatorChain) Add(validator Validator) *ValidatorChain {
	c.validators = append(c.validators, validator)
	return c
}

// StopOnFirstError makes the chain skip the remaining validators after a
// failure. By default every validator runs.
func (c *ValidatorChain) StopOnFirstError(stop bool) *ValidatorChain {
	c.stopOnFirstError = stop
	return c
}

// Validate runs the chain and combines the results
func (c *ValidatorChain) Validate(value interface{}) ValidationResult {
	results := make([]ValidationResult, 0, len(c.validators))
	for _, validator := range c.validators {
		result := validator.Validate(value)
		results = append(results, result)
		if c.stopOnFirstError && !result.Valid {
			break
		}
	}
	return Combine(results...)
}
