//go:build !linux && !windows

package gocuda

// No supported driver layout to search on the remaining platforms.
const (
	runtimeLibName = ""
	driverLibName  = ""
)

var (
	runtimeLibGlobs []string
	driverLibGlobs  []string
)
