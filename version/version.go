// Package version holds the build version of the daemon programs.
//
// The values are set at link time:
//
//	go build -ldflags "-X github.com/alexcvc/boilerplate-daemonContext/version.Version=1.2.0 \
//		-X github.com/alexcvc/boilerplate-daemonContext/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "0.0.0"
	Commit  = ""
	Date    = ""
)

// Short returns the version, with the commit if known.
func Short() string {
	if Commit == "" {
		return Version
	}
	return Version + "-" + Commit
}

// String returns the version line printed by the programs, like "name v.1.2.0-abc123 (go1.21.5)".
func String(name string) string {
	s := fmt.Sprintf("%s v.%s", name, Short())
	if Date != "" {
		s += " built " + Date
	}
	return s + " (" + runtime.Version() + ")"
}
