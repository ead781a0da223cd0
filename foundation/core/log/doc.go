// File: doc.go
// Title: Structured Logging Package
// Description: Package log provides the structured logger shared by every
//              vozinv component. Entries carry a level, a logger name, an
//              optional request ID and free-form fields, and are written
//              as JSON, text, console or logfmt lines.
// Author: vozinv maintainers
// Version: v0.2.0
// Created: 2026-03-02
// Modified: 2026-09-14
//
// Change History:
// - 2026-03-02 v0.1.0: Initial structured logger
// - 2026-09-14 v0.2.0: Dropped async buffering, sorted field output
//
// Usage:
//
//	logger := log.NewWithConfig(log.Config{Level: log.LevelDebug, Format: log.FormatText})
//	logger = logger.WithName("listener").WithRequestID(id)
//	logger.Info("transcript parsed", log.Fields{"quantity": 2, "unit_price": 5000})
//
//	timer := logger.StartTimer("parse")
//	defer timer.Stop()
package log
