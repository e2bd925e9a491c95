// Package version reports the build version of meetprep.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Overridden with -ldflags "-X github.com/memohai/meetprep/internal/version.Version=..." at build time.
var (
	Version    = "dev"
	CommitHash = ""
	BuildTime  = ""
)

var readBuildInfo sync.Once

func fillFromBuildInfo() {
	readBuildInfo.Do(func() {
		if CommitHash != "" {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				CommitHash = setting.Value
			case "vcs.time":
				BuildTime = setting.Value
			}
		}
	})
}

// GetInfo returns the version with the short commit hash when known, e.g. "v1.2.0 (a1b2c3d)".
func GetInfo() string {
	fillFromBuildInfo()
	res := Version
	if CommitHash != "" {
		short := CommitHash
		if len(short) > 7 {
			short = short[:7]
		}
		res += fmt.Sprintf(" (%s)", short)
	}
	return res
}

// Detailed adds the build time to GetInfo.
func Detailed() string {
	info := GetInfo()
	if BuildTime != "" {
		info += " built " + BuildTime
	}
	return info
}
