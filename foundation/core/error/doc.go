// Package error provides structured errors for the vozinv code base.
//
// Package: error
// Title: vozinv Error Handling
// Description: Structured error type carrying a code, a severity, free-form
//              details and the operation that failed. Errors wrap standard
//              errors and stay compatible with errors.Is / errors.As.
// Author: vozinv maintainers
// Version: v0.2.0
// Created: 2026-03-02
// Modified: 2026-09-14
//
// Change History:
// - 2026-03-02 v0.1.0: Initial implementation with codes and severities
// - 2026-09-14 v0.2.0: Trimmed code table to inventory and transport codes
//
// Usage:
//
//	import mdwerror "github.com/vozinv/vozinv/foundation/core/error"
//
//	err := mdwerror.New("cantidad no es un número válido").
//		WithCode(mdwerror.CodeInvalidFormat).
//		WithOperation("inventory.Edit").
//		WithDetail("field", "quantity")
//
//	if mdwerror.HasCode(err, mdwerror.CodeInvalidFormat) {
//		// show the message to the operator
//	}
package error
