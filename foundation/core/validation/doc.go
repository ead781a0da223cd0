// Package validation provides field validators and chains whose results
// map onto foundation error codes.
//
// Package: validation
// Title: vozinv Validation Framework
// Description: Rules check a single field value, chains combine rules for
//              one field, and Combine merges the results of several fields.
//              A failed result converts into a *mdwerror.Error carrying the
//              code, field and value of the first failure.
// Author: vozinv maintainers
// Version: v0.2.0
// Created: 2026-03-02
// Modified: 2026-10-17
//
// Change History:
// - 2026-03-02 v0.1.0: Initial validator chain implementation
// - 2026-10-17 v0.2.0: Results carry mdwerror codes; integer and range rules
//
// Usage:
//
//	chain := validation.NewValidatorChain().
//		StopOnFirstError(true).
//		Add(validation.Integer("quantity")).
//		Add(validation.Min("quantity", 0))
//
//	if err := chain.Validate(" 12 ").ToError("inventory.Edit"); err != nil {
//		return err
//	}
package validation
