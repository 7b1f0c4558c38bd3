// Package version exposes build information for the guard binary.
package version

import (
	"fmt"
	"runtime"
)

// Populated at build time:
//
//	go build -ldflags "-X 'github.com/dshills/guard/internal/version.Version=1.2.3' -X 'github.com/dshills/guard/internal/version.Commit=abcdefg'"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Info contains build and runtime version information.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns the version information on a single line, e.g.
// "guard version 1.2.3 (commit: abcdefg) built at 2024-04-27T15:04:05Z with go1.25.0 on linux/amd64".
func (i Info) String() string {
	return fmt.Sprintf(
		"guard version %s (commit: %s) built at %s with %s on %s",
		i.Version,
		i.GitCommit,
		i.BuildTime,
		i.GoVersion,
		i.Platform,
	)
}
