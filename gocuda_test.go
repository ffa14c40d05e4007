package gocuda

// Common initialization and testing tools for all test files.

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"

	"github.com/emberml/gocuda/sim"
)

func init() {
	klog.InitFlags(nil)
}

func must(err error) {
	if err != nil {
		panicf("Failed: %+v", err)
	}
}

func must1[T any](t T, err error) T {
	must(err)
	return t
}

func panicf(format string, args ...any) {
	err := errors.Errorf(format, args...)
	panic(err)
}

// newTestManager builds a Manager over a simulated driver exposing the given
// devices, and closes it when the test finishes.
func newTestManager(t *testing.T, specs ...sim.DeviceSpec) (*Manager, *sim.Driver) {
	driver := sim.New(specs...)
	manager, err := New(driver, nil)
	require.NoErrorf(t, err, "Failed to create manager over %d simulated device(s)", len(specs))
	t.Cleanup(func() {
		require.NoErrorf(t, manager.Close(), "Failed to close manager for %s", t.Name())
	})
	return manager, driver
}

// defaultManager builds a Manager over the default two-device catalog.
func defaultManager(t *testing.T) (*Manager, *sim.Driver) {
	return newTestManager(t, sim.DefaultCatalog...)
}
