package gocuda

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/emberml/gocuda/cudart"
	"github.com/emberml/gocuda/sim"
)

func TestNew(t *testing.T) {
	manager, driver := defaultManager(t)
	require.Equal(t, 2, manager.DeviceCount())
	require.Equal(t, 0, manager.ActiveDeviceID(), "Construction activates logical device 0")

	// Compute-capability ranking puts the GTX 1080 (native id 1) first.
	require.Equal(t, 1, manager.NativeID(0))
	require.Equal(t, 0, manager.NativeID(1))
	require.Equal(t, "GeForce GTX 1080", manager.DeviceProperties(0).Name)

	// Only the activated device has a queue so far, and the driver context
	// points at its native id.
	require.Equal(t, 1, driver.StreamsCreated(1))
	require.Equal(t, 0, driver.StreamsCreated(0))
	require.Equal(t, 1, driver.CurrentDevice())
}

func TestNewNoDevices(t *testing.T) {
	_, err := New(sim.New(), nil)
	require.ErrorIs(t, err, ErrNoDevices)
}

func TestNewPropertiesFailure(t *testing.T) {
	driver := sim.New(sim.DefaultCatalog...)
	driver.FailProperties(1, errors.New("ECC error"))
	_, err := New(driver, nil)
	require.ErrorContains(t, err, "querying properties of device 1")
}

func TestNewDefaultDeviceEnv(t *testing.T) {
	for _, test := range []struct {
		value string
		want  int
	}{
		{"1", 1},
		{"0", 0},
		{"7", 0},
		{"-2", 0},
		{"last", 0},
	} {
		t.Setenv(EnvDefaultDevice, test.value)
		manager, _ := defaultManager(t)
		require.Equalf(t, test.want, manager.ActiveDeviceID(),
			"%s=%q should leave device %d active", EnvDefaultDevice, test.value, test.want)
	}
}

func TestNewInitialRank(t *testing.T) {
	// The 16 GB board loses on compute capability but wins on memory.
	specs := []sim.DeviceSpec{
		{Name: "Quadro M6000 24GB", Major: 5, Minor: 2, MemoryBytes: 24 << 30, MultiProcessors: 24, ClockRateKHz: 1114000},
		{Name: "GeForce GTX 1080", Major: 6, Minor: 1, MemoryBytes: 8 << 30, MultiProcessors: 20, ClockRateKHz: 1733500},
	}
	driver := sim.New(specs...)
	manager, err := New(driver, &Options{InitialRank: RankMemory})
	require.NoError(t, err)
	defer func() { require.NoError(t, manager.Close()) }()

	require.Equal(t, 0, manager.NativeID(0), "Memory ranking must put the Quadro first")
	require.Equal(t, "Quadro M6000 24GB", manager.DeviceProperties(0).Name)
	require.Equal(t, 0, driver.CurrentDevice())
}

func TestBootstrapSkipsUnavailable(t *testing.T) {
	// Ranked order over Catalog(3) is native 1 (the 1080), then the 750 Ti
	// clones by descending native id: 2, then 0. Making native 1 unavailable
	// must land the default selection on logical 1, which is native 2.
	driver := sim.New(sim.Catalog(3)...)
	driver.FailStreamCreate(1, errors.Wrap(cudart.ErrDeviceUnavailable, "device in exclusive mode"))
	manager, err := New(driver, nil)
	require.NoError(t, err, "Construction should skip the unavailable device")
	defer func() { require.NoError(t, manager.Close()) }()

	require.Equal(t, 1, manager.ActiveDeviceID())
	require.Equal(t, 2, manager.NativeID(1))
	require.Equal(t, 1, driver.StreamsCreated(2))
	require.Equal(t, 0, driver.StreamsCreated(1))

	// Once constructed the scan is over: touching the unavailable device now
	// surfaces its real error.
	_, err = manager.Stream(0)
	require.ErrorIs(t, err, cudart.ErrDeviceUnavailable)
}

func TestBootstrapAllUnavailable(t *testing.T) {
	driver := sim.New(sim.DefaultCatalog...)
	unavailable := errors.Wrap(cudart.ErrDeviceUnavailable, "device prohibited")
	driver.FailStreamCreate(0, unavailable)
	driver.FailStreamCreate(1, unavailable)
	_, err := New(driver, nil)
	require.ErrorIs(t, err, cudart.ErrDeviceUnavailable)
	require.ErrorContains(t, err, "no usable device among 2 candidates")
}

func TestBootstrapOtherFailuresAreFatal(t *testing.T) {
	driver := sim.New(sim.DefaultCatalog...)
	driver.FailStreamCreate(1, errors.New("out of memory"))
	_, err := New(driver, nil)
	require.ErrorContains(t, err, "creating queue for device 0")
	require.Equal(t, 0, driver.StreamsCreated(0), "Only the unavailable class triggers the fallback scan")
}

func TestSetActiveDevice(t *testing.T) {
	manager, driver := defaultManager(t)

	previous, err := manager.SetActiveDevice(1)
	require.NoError(t, err)
	require.Equal(t, 0, previous)
	require.Equal(t, 1, manager.ActiveDeviceID())
	require.Equal(t, 1, driver.StreamsCreated(0), "First activation of logical 1 (native 0) creates its queue")

	// Out of range is a sentinel, not an error, and changes nothing.
	for _, device := range []int{2, -1, 99} {
		previous, err = manager.SetActiveDevice(device)
		require.NoError(t, err)
		require.Equal(t, -1, previous)
		require.Equal(t, 1, manager.ActiveDeviceID())
	}

	// Re-activation re-issues the context switch but keeps the queue.
	switches := driver.SetDeviceCalls()
	previous, err = manager.SetActiveDevice(1)
	require.NoError(t, err)
	require.Equal(t, 1, previous)
	require.Equal(t, switches+1, driver.SetDeviceCalls())
	require.Equal(t, 1, driver.StreamsCreated(0))
}

func TestSetActiveDeviceCommitsOnQueueFailure(t *testing.T) {
	manager, driver := defaultManager(t)
	driver.FailStreamCreate(0, errors.Wrap(cudart.ErrDeviceUnavailable, "device in exclusive mode"))

	_, err := manager.SetActiveDevice(1)
	require.ErrorIs(t, err, cudart.ErrDeviceUnavailable)
	// The context switch itself succeeded and stays committed even though the
	// queue could not be created.
	require.Equal(t, 1, manager.ActiveDeviceID())
	require.Equal(t, 0, driver.CurrentDevice())

	// The failure is not latched: once the condition clears the queue comes up.
	driver.FailStreamCreate(0, nil)
	_, err = manager.SetActiveDevice(1)
	require.NoError(t, err)
	require.Equal(t, 1, driver.StreamsCreated(0))
}

func TestStream(t *testing.T) {
	manager, driver := defaultManager(t)

	stream, err := manager.Stream(1)
	require.NoError(t, err)
	require.Equal(t, 0, manager.ActiveDeviceID(), "Temporary activation must restore the previous device")
	require.Equal(t, 1, driver.StreamsCreated(0))

	again, err := manager.Stream(1)
	require.NoError(t, err)
	require.Same(t, stream, again)
	require.Equal(t, 1, driver.StreamsCreated(0), "The queue is created once and cached")

	_, err = manager.Stream(5)
	require.ErrorIs(t, err, ErrInvalidDeviceID)
	_, err = manager.Stream(-1)
	require.ErrorIs(t, err, ErrInvalidDeviceID)
}

func TestActiveStream(t *testing.T) {
	manager, _ := defaultManager(t)
	active, err := manager.ActiveStream()
	require.NoError(t, err)
	direct, err := manager.Stream(manager.ActiveDeviceID())
	require.NoError(t, err)
	require.Same(t, direct, active)
}

func TestSync(t *testing.T) {
	manager, _ := defaultManager(t)
	stream := must1(manager.Stream(1)).(*sim.Stream)

	require.NoError(t, manager.Sync(1))
	require.Equal(t, 1, stream.Syncs())
	require.Equal(t, 0, manager.ActiveDeviceID(), "Sync must restore the active device")

	require.ErrorIs(t, manager.Sync(9), ErrInvalidDeviceID)
	require.ErrorIs(t, manager.Sync(-3), ErrInvalidDeviceID)
}

func TestDeviceIDLookups(t *testing.T) {
	manager, _ := defaultManager(t)
	for logical := 0; logical < manager.DeviceCount(); logical++ {
		native := manager.NativeID(logical)
		require.Equalf(t, logical, manager.DeviceIDFromNativeID(native), "Round trip for logical device %d", logical)
	}
	require.Equal(t, -1, manager.NativeID(17))
	require.Equal(t, manager.DeviceCount(), manager.DeviceIDFromNativeID(99),
		"Unknown native ids map to the count sentinel")
}

func TestDevicePropertiesFallback(t *testing.T) {
	manager, _ := defaultManager(t)
	want := manager.DeviceProperties(0)
	require.Equal(t, want, manager.DeviceProperties(42))
	require.Equal(t, want, manager.DeviceProperties(-1))

	device := manager.DeviceFor(1)
	require.Equal(t, 0, device.NativeID)
	require.Equal(t, device.Props, manager.DeviceProperties(1))
	require.Equal(t, manager.DeviceFor(0), manager.DeviceFor(-7))
}

func TestDevicesSnapshot(t *testing.T) {
	manager, _ := defaultManager(t)
	devices := manager.Devices()
	require.Len(t, devices, 2)
	devices[0].NativeID = 1234
	require.NotEqual(t, 1234, manager.Devices()[0].NativeID, "Devices must return a copy")
}

func TestRank(t *testing.T) {
	driver := sim.New(sim.DefaultCatalog...)
	manager, err := New(driver, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, manager.Close()) }()

	manager.Rank(RankNone)
	require.Equal(t, 1, manager.NativeID(0), "Native ranking orders by descending native id")
	manager.Rank(RankMemory)
	require.Equal(t, "GeForce GTX 1080", manager.DeviceProperties(0).Name)
}

func TestEvalFlag(t *testing.T) {
	manager, _ := defaultManager(t)
	require.True(t, manager.EvalFlag(), "Eager evaluation defaults to on")
	manager.SetEvalFlag(false)
	require.False(t, manager.EvalFlag())
	manager.SetEvalFlag(true)
	require.True(t, manager.EvalFlag())
}

func TestClose(t *testing.T) {
	driver := sim.New(sim.DefaultCatalog...)
	manager, err := New(driver, &Options{
		MemoryManager: func() (cudart.MemoryManager, error) {
			return sim.NewMemoryPool("device"), nil
		},
	})
	require.NoError(t, err)

	stream := must1(manager.Stream(0)).(*sim.Stream)
	blas := must1(manager.BlasHandle()).(*sim.Handle)
	sparse := must1(manager.SparseHandle()).(*sim.Handle)
	pool := must1(manager.MemoryManager()).(*sim.MemoryPool)

	require.NoError(t, manager.Close())
	require.True(t, stream.Destroyed())
	require.True(t, blas.Destroyed())
	require.True(t, sparse.Destroyed())
	require.Equal(t, 1, pool.Shutdowns())

	// Close is idempotent: the second call must not touch the resources again
	// (their fakes would report a double destroy).
	require.NoError(t, manager.Close())
	require.Equal(t, 1, pool.Shutdowns())
}
