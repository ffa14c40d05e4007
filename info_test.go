package gocuda

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/emberml/gocuda/sim"
	"github.com/emberml/gocuda/version"
)

func TestDeviceInfo(t *testing.T) {
	manager, _ := defaultManager(t)
	require.Equal(t, "[0] GeForce GTX 1080, 8192 MB, CUDA Compute 6.1\n", manager.DeviceInfo(0))
	require.Equal(t, "-1- GeForce GTX 750 Ti, 2048 MB, CUDA Compute 5.0\n", manager.DeviceInfo(1))

	// The brackets follow the active device.
	_, err := manager.SetActiveDevice(1)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(manager.DeviceInfo(1), "[1] "))
	require.True(t, strings.HasPrefix(manager.DeviceInfo(0), "-0- "))
}

func TestDeviceInfoRoundsMemoryUp(t *testing.T) {
	manager, _ := newTestManager(t, sim.DeviceSpec{
		Name:            "Jetson TX1",
		Major:           5,
		Minor:           3,
		MemoryBytes:     1<<20 + 1,
		MultiProcessors: 2,
		ClockRateKHz:    998000,
	})
	require.Contains(t, manager.DeviceInfo(0), ", 2 MB, ")
}

func TestPlatformInfo(t *testing.T) {
	manager, _ := defaultManager(t)
	info, err := manager.PlatformInfo()
	require.NoError(t, err)
	require.Equal(t, "Platform: CUDA Toolkit 11.4, Driver: NVIDIA UNIX x86_64 Kernel Module  470.57.02\n", info)
}

func TestDriverVersionFallback(t *testing.T) {
	driver := sim.New(sim.DefaultCatalog...)
	driver.SetDriverString("")
	manager, err := New(driver, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, manager.Close()) }()

	got, err := manager.DriverVersion()
	require.NoError(t, err, "Platforms without the query fall back to the raw number")
	require.Equal(t, "CUDA Driver Version: 11040", got)

	info, err := manager.PlatformInfo()
	require.NoError(t, err)
	require.Equal(t, "Platform: CUDA Toolkit 11.4, Driver: CUDA Driver Version: 11040\n", info)
}

func TestDriverVersionFailure(t *testing.T) {
	manager, driver := defaultManager(t)
	driver.FailDriverVersionString(errors.New("proc read failed"))

	_, err := manager.DriverVersion()
	require.ErrorContains(t, err, "querying driver version",
		"Failures other than unsupported are surfaced")
	_, err = manager.PlatformInfo()
	require.Error(t, err)
}

func TestRuntimeVersionFormat(t *testing.T) {
	for _, test := range []struct {
		packed int
		want   string
	}{
		{11040, "11.4"},
		{12030, "12.3"},
		{10010, "10.1"},
		{9020, "9.2"},
		{9000, "9"},
		{11000, "11"},
		{0, "0.0"},
	} {
		require.Equalf(t, test.want, formatRuntimeVersion(test.packed), "Rendering packed version %d", test.packed)
	}
}

func TestRuntimeVersion(t *testing.T) {
	driver := sim.New(sim.DefaultCatalog...)
	driver.SetVersions(12030, 12030)
	manager, err := New(driver, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, manager.Close()) }()

	got, err := manager.RuntimeVersion()
	require.NoError(t, err)
	require.Equal(t, "12.3", got)
}

func TestAllInfo(t *testing.T) {
	manager, _ := defaultManager(t)
	info, err := manager.AllInfo()
	require.NoError(t, err)
	fmt.Printf("Full report:\n%s", info)

	lines := strings.Split(strings.TrimRight(info, "\n"), "\n")
	require.Len(t, lines, 2+manager.DeviceCount())
	require.True(t, strings.HasPrefix(lines[0], "gocuda v"+version.Version+" (CUDA, "))
	require.Contains(t, lines[0], ", build ")
	require.True(t, strings.HasPrefix(lines[1], "Platform: CUDA Toolkit "))
	require.True(t, strings.HasPrefix(lines[2], "[0] "))
	require.True(t, strings.HasPrefix(lines[3], "-1- "))
}

func TestDevicePropStrings(t *testing.T) {
	manager, _ := defaultManager(t)
	name, platform, toolkit, compute, err := manager.DevicePropStrings()
	require.NoError(t, err)
	require.Equal(t, "GeForce_GTX_1080", name)
	require.Equal(t, "CUDA", platform)
	require.Equal(t, "v11.4", toolkit)
	require.Equal(t, "6.1", compute)
}

func TestSanitizeName(t *testing.T) {
	for _, test := range []struct {
		in, want string
	}{
		{"GeForce GTX 1080", "GeForce_GTX_1080"},
		{"Tesla  K40", "Tesla"},
		{"Quadro P5000 ", "Quadro_P5000"},
		{"A30", "A30"},
		{"", ""},
		{strings.Repeat("x", 80), strings.Repeat("x", 63)},
	} {
		require.Equalf(t, test.want, sanitizeName(test.in), "Sanitizing %q", test.in)
	}
}

func TestMemorySizes(t *testing.T) {
	manager, _ := defaultManager(t)
	require.Equal(t, uint64(8<<30), manager.DeviceMemorySize(0))
	require.Equal(t, uint64(2<<30), manager.DeviceMemorySize(1))

	host, err := manager.HostMemorySize()
	if err != nil {
		t.Skipf("Host memory inspection not supported here: %v", err)
	}
	require.Greater(t, host, uint64(0))
	fmt.Printf("Host physical memory: %d MB\n", host>>20)
}

func TestIsDoubleSupported(t *testing.T) {
	manager, _ := defaultManager(t)
	for device := 0; device < manager.DeviceCount(); device++ {
		require.True(t, manager.IsDoubleSupported(device))
	}
}
