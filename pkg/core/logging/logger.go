// ============================================================================
// vozinv - Spanish voice inventory
// ============================================================================
//
// Package:     logging
// Description: Key/value logging facade over the foundation logger
// Author:      vozinv maintainers
// Created:     2026-03-02
// License:     MIT
// ============================================================================

package logging

import mdwlog "github.com/vozinv/vozinv/foundation/core/log"

// Level is the severity used to override a logger's configured level,
// e.g. for --verbose
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	return l.foundation().String()
}

// foundation maps l onto the foundation logger levels. Unknown values
// fall back to info.
func (l Level) foundation() mdwlog.Level {
	switch l {
	case LevelDebug:
		return mdwlog.LevelDebug
	case LevelWarn:
		return mdwlog.LevelWarn
	case LevelError:
		return mdwlog.LevelError
	default:
		return mdwlog.LevelInfo
	}
}
