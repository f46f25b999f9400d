package buildtime

import (
	"runtime/debug"
)

// set by -ldflags "-X github.com/opst/mlpipe/pkg/buildtime.version=..."
var version = "devel"

// set by -ldflags "-X github.com/opst/mlpipe/pkg/buildtime.revision=..."
//
// When empty, vcs.revision in build info is used.
var revision = ""

// version string when this mlpipe has been built.
func VERSION() string {
	return version
}

func GIT_REVISION() string {
	if revision != "" {
		return revision
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

func VersionString() string {
	return VERSION() + " (commit: " + GIT_REVISION() + ")"
}
