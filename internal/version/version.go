// Package version carries build metadata injected with -ldflags.
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Full returns the one-line version string printed by --version.
func Full() string {
	return fmt.Sprintf("clipnamer %s, commit %s, built at %s", Version, Commit, Date)
}
