// Package version holds the build identity printed by qarun version.
package version

// Set with -ldflags "-X github.com/dkoosis/qarun/internal/version.Version=..." at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)
