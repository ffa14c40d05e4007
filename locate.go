package gocuda

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"k8s.io/klog/v2"
)

// Filesystem discovery of the platform's shared libraries, for diagnostics
// and binding setup. Nothing here loads a library: real bindings do their
// own loading, and discovery works on hosts with no usable driver at all.

// LocateRuntimeLibraries returns the absolute paths of CUDA runtime
// (cudart) libraries present on this host, symlinks resolved and duplicates
// removed. Order follows the search: the dynamic-linker path first, then the
// usual toolkit install locations. Unsupported platforms return nil.
func LocateRuntimeLibraries() []string {
	return locateLibraries(runtimeLibName, runtimeLibGlobs)
}

// LocateDriverLibraries returns the absolute paths of CUDA driver libraries
// present on this host, in the same fashion as LocateRuntimeLibraries.
func LocateDriverLibraries() []string {
	return locateLibraries(driverLibName, driverLibGlobs)
}

func locateLibraries(baseName string, defaultGlobs []string) []string {
	if baseName == "" {
		return nil
	}
	var ldPaths []string
	switch runtime.GOOS {
	case "windows":
		ldPaths = strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	case "linux":
		ldPaths = strings.Split(os.Getenv("LD_LIBRARY_PATH"), string(os.PathListSeparator))
	}
	patterns := make([]string, 0, len(ldPaths)+len(defaultGlobs))
	for _, dir := range ldPaths {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		patterns = append(patterns, filepath.Join(abs, baseName))
	}
	patterns = append(patterns, defaultGlobs...)
	klog.V(2).Infof("Searching for %s with globs %v", baseName, patterns)

	var found []string
	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		for _, match := range matches {
			path := resolveLink(match)
			known := false
			for _, p := range found {
				if p == path {
					known = true
					break
				}
			}
			if !known {
				found = append(found, path)
			}
		}
	}
	klog.V(2).Infof("Found %s libraries: %v", baseName, found)
	return found
}

// resolveLink follows a chain of symlinks, so one library reached through
// several links counts once.
func resolveLink(path string) string {
	resolved := path
	target, err := os.Readlink(resolved)
	for err == nil {
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(resolved), target)
		}
		resolved = target
		target, err = os.Readlink(resolved)
	}
	return resolved
}
