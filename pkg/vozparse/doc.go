// ============================================================================
// vozinv - Spanish voice inventory
// ============================================================================
//
// Package:     vozparse
// Description: Spanish numeral parser for spoken inventory lines
// Author:      vozinv maintainers
// Created:     2026-03-02
// License:     MIT
// ============================================================================

// Package vozparse turns a Spanish utterance such as
// "ocho cuarenta y dos mil" into an inventory record (quantity 8, unit
// price 42000) or into an editing command such as "borrar el último".
//
// The pipeline is Normalize, DetectCommand, Tokenize, MergeCompounds and
// Aggregate. Parse runs all of them; the stages are exported so callers
// and tests can inspect intermediate output (see Explain).
//
// Everything in this package is pure and safe for concurrent use.
//
// Known limitations:
//
//   - Non-canonical orders such as "mil dos mil" are resolved mechanically
//     by the group accumulator, not rejected.
//   - Signed digit runs such as "-5" are plain text. Quantities and prices
//     are never negative and dictation does not produce a sign.
//   - Only the first two numbers are resolved; later numbers are ignored
//     even when they would not fit in an int64.
package vozparse
