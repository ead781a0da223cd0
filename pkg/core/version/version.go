// ============================================================================
// vozinv - Spanish voice inventory
// ============================================================================
//
// Package:     version
// Description: Central version information for all components
// Author:      vozinv maintainers
// Created:     2026-03-02
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Component versions
const (
	Platform = "0.4.0"
	Parser   = "1.1.0"
	Server   = "0.3.0"
	CLI      = "0.4.0"
)

// Set at build time with -ldflags "-X ...=..."
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "parser", "vozparse":
		return Parser
	case "server", "ws":
		return Server
	case "cli", "vozinv":
		return CLI
	default:
		return Platform
	}
}

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Parser    string `json:"parser"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information of the running binary
func Get() Info {
	return Info{
		Version:   Platform,
		Parser:    Parser,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("vozinv v%s (parser %s, %s, %s)", i.Version, i.Parser, i.GitCommit, i.Platform)
}
