package interp

import "runtime"

// Version is the current version of the finite interpretation engine.
const Version = "0.1.0"

// Set at build time:
//
//	go build -ldflags "-X github.com/gitrdm/gofinite/pkg/interp.gitCommit=$(git rev-parse --short HEAD)"
var (
	gitCommit string
	buildDate string
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	GitCommit string `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty" yaml:"build_date,omitempty"`
}

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// GetVersionInfo returns the version together with the toolchain and any
// build metadata linked into the binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
		GitCommit: gitCommit,
		BuildDate: buildDate,
	}
}
