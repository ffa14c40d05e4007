// Package version records the library release and build metadata shown in
// info banners.
package version

import (
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
)

// Version is the gocuda release. Overridable at link time with
// -ldflags="-X github.com/emberml/gocuda/version.Version=...".
var Version = "0.3.0"

var (
	revisionOnce sync.Once
	revision     string
)

// Revision returns the VCS revision stamped into the running binary,
// shortened to 12 characters, or "unknown" when the binary was built without
// VCS stamping (go test does that, so tests see "unknown").
func Revision() string {
	revisionOnce.Do(func() {
		revision = "unknown"
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				revision = setting.Value
				if len(revision) > 12 {
					revision = revision[:12]
				}
				return
			}
		}
	})
	return revision
}

// System describes the build platform, e.g. "64-bit Linux".
func System() string {
	arch := strconv.Itoa(strconv.IntSize) + "-bit "
	switch runtime.GOOS {
	case "linux":
		return arch + "Linux"
	case "windows":
		return arch + "Windows"
	case "darwin":
		return arch + "Mac OSX"
	default:
		return arch + runtime.GOOS
	}
}
