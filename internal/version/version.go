// Package version carries build metadata injected at link time.
package version

import "fmt"

// Build-time variables set by ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String renders the version info on one line.
func String() string {
	return fmt.Sprintf("slipscan %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
