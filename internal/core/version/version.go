// Package version provides build information for the reviewpipe binaries
package version

import "runtime/debug"

// BuildInfo holds version information about a build
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Info returns the build information for service. version, commit and date are
// set at build time:
//
//	-ldflags "-X 'reviewpipe/internal/core/version.version=v0.1.0' -X 'reviewpipe/internal/core/version.commit=abcd'"
//
// Without ldflags the VCS stamp embedded by the go tool is used when present
func Info(service string) BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	if info, ok := readBuildInfo(); ok {
		bi.GoVersion = info.GoVersion
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "none" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.Date == "unknown" {
					bi.Date = s.Value
				}
			}
		}
	}
	return bi
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	readBuildInfo = debug.ReadBuildInfo
)
