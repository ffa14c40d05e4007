package gocuda

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocateLibraries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("The symlink layout under test is Unix-shaped")
	}
	t.Setenv("LD_LIBRARY_PATH", "")

	dir := t.TempDir()
	real := filepath.Join(dir, "libcudart.so.11.4.108")
	require.NoError(t, os.WriteFile(real, []byte{0x7f, 'E', 'L', 'F'}, 0o644))
	require.NoError(t, os.Symlink(real, filepath.Join(dir, "libcudart.so.11")))
	require.NoError(t, os.Symlink("libcudart.so.11", filepath.Join(dir, "libcudart.so")))

	found := locateLibraries("libcudart.so*", []string{filepath.Join(dir, "libcudart.so*")})
	require.Equal(t, []string{real}, found, "Symlink chains must resolve and deduplicate")
}

func TestLocateLibrariesMissing(t *testing.T) {
	t.Setenv("LD_LIBRARY_PATH", "")
	found := locateLibraries("libnothing.so*", []string{filepath.Join(t.TempDir(), "libnothing.so*")})
	require.Empty(t, found)
}

func TestLocateLibrariesSmoke(t *testing.T) {
	// Exercises the per-OS glob tables; hosts without CUDA find nothing.
	fmt.Printf("Runtime libraries on this host: %v\n", LocateRuntimeLibraries())
	fmt.Printf("Driver libraries on this host: %v\n", LocateDriverLibraries())
}
