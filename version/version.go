package version

import (
	"runtime"
	"strings"
)

// Version info injected via ldflags at build time
var (
	// Version is set via -ldflags "-X versioninfo/version.Version=x.x.x"
	Version = "1.3.2"

	// CommitHash is set via -ldflags "-X versioninfo/version.CommitHash=xxx"
	CommitHash = "unknown"

	// BuildTime is set via -ldflags "-X versioninfo/version.BuildTime=xxx"
	BuildTime = "unknown"
)

// GetVersion returns the platform version string
func GetVersion() string {
	return strings.TrimPrefix(strings.TrimSpace(Version), "v")
}

// GetFullVersion returns the version including the commit hash
func GetFullVersion() string {
	if CommitHash == "unknown" || len(CommitHash) < 7 {
		return Version
	}
	return Version + " (" + CommitHash[:7] + ")"
}

// RuntimeVersion returns the Go runtime version without its "go" prefix,
// e.g. "1.22.5".
func RuntimeVersion() string {
	return strings.TrimPrefix(runtime.Version(), "go")
}

// GetBuildInfo returns build metadata
func GetBuildInfo() string {
	return "Version: " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime + "\nGo: " + runtime.Version()
}
