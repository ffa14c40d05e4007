package gocuda

import (
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"

	"github.com/emberml/gocuda/cudart"
)

// activationState drives the construction-time fallback scan: while the
// default device is being selected, devices reporting unavailable are skipped
// in ranking order; after the first successful activation every failure is
// surfaced as-is.
type activationState int

const (
	bootstrapSelecting activationState = iota
	steady
)

// Options configures a Manager. The zero value (and nil) is valid.
type Options struct {
	// InitialRank is the ranking applied to the enumerated devices during
	// construction. The zero value is RankCompute, the default device order.
	InitialRank RankMode

	// MemoryManager and PinnedMemoryManager build the process-wide allocator
	// instances returned by the corresponding Manager accessors. Allocation
	// policy lives outside this package; the Manager only caches the
	// instances and shuts them down on Close. Leaving a factory nil makes
	// its accessor fail with ErrNoMemoryManager.
	MemoryManager       func() (cudart.MemoryManager, error)
	PinnedMemoryManager func() (cudart.MemoryManager, error)
}

// Manager owns the device table for one runtime: the ranked descriptors, the
// active-device selection, one lazily created execution queue per device and
// the per-device library handle caches.
//
// All methods are safe for concurrent use, with the platform's usual caveat:
// the active device is manager-wide state, so a goroutine that switches
// devices concurrently with resource creation on another goroutine can land
// the resource on the wrong device. Callers needing a stable active device
// across a sequence of calls must serialize those calls themselves.
type Manager struct {
	rt cudart.Runtime

	mu      sync.Mutex
	devices []Device
	streams []cudart.Stream
	active  int
	state   activationState
	eval    bool

	blas   *onceTable[cudart.BlasHandle]
	solver *onceTable[cudart.SolverHandle]
	sparse *onceTable[cudart.SparseHandle]
	gfx    *onceTable[*GraphicsManager]

	mem           *onceTable[cudart.MemoryManager]
	pinnedMem     *onceTable[cudart.MemoryManager]
	memFactory    func() (cudart.MemoryManager, error)
	pinnedFactory func() (cudart.MemoryManager, error)

	interopOnce    sync.Once
	interopCapable bool

	closeOnce sync.Once
	closeErr  error
}

// EnvDefaultDevice overrides the logical index activated at construction.
// Out-of-range or unparsable values are warned about and ignored.
const EnvDefaultDevice = "GOCUDA_DEFAULT_DEVICE"

// New enumerates the runtime's devices, ranks them and activates the default
// one. It fails when the runtime reports zero devices or when any device's
// properties cannot be read; no partially initialized Manager is returned.
//
// The default active device is logical index 0 after ranking, overridable
// with EnvDefaultDevice. Only during this first activation, a device whose
// queue creation reports cudart.ErrDeviceUnavailable is skipped and the next
// device in ranking order is tried; construction fails if every device is
// unavailable.
func New(rt cudart.Runtime, opts *Options) (*Manager, error) {
	if opts == nil {
		opts = &Options{}
	}
	count, err := rt.DeviceCount()
	if err != nil {
		return nil, errors.WithMessage(err, "querying device count")
	}
	if count == 0 {
		return nil, ErrNoDevices
	}

	mgr := &Manager{
		rt:            rt,
		devices:       make([]Device, 0, count),
		streams:       make([]cudart.Stream, count),
		state:         bootstrapSelecting,
		eval:          true,
		blas:          newOnceTable[cudart.BlasHandle](count),
		solver:        newOnceTable[cudart.SolverHandle](count),
		sparse:        newOnceTable[cudart.SparseHandle](count),
		gfx:           newOnceTable[*GraphicsManager](count),
		mem:           newOnceTable[cudart.MemoryManager](1),
		pinnedMem:     newOnceTable[cudart.MemoryManager](1),
		memFactory:    opts.MemoryManager,
		pinnedFactory: opts.PinnedMemoryManager,
	}
	for i := 0; i < count; i++ {
		props, err := rt.DeviceProperties(i)
		if err != nil {
			return nil, errors.WithMessagef(err, "querying properties of device %d", i)
		}
		mgr.devices = append(mgr.devices, Device{
			Props:    props,
			Flops:    throughputScore(props),
			NativeID: i,
		})
	}
	rankDevices(mgr.devices, opts.InitialRank)

	device := 0
	if env := os.Getenv(EnvDefaultDevice); env != "" {
		parsed, err := strconv.Atoi(env)
		if err != nil || parsed < 0 || parsed >= count {
			klog.Warningf("%s=%q is out of range, activating device 0 instead", EnvDefaultDevice, env)
		} else {
			device = parsed
		}
	}
	if _, err := mgr.setActive(device, mgr.devices[device].NativeID); err != nil {
		return nil, err
	}
	klog.V(1).Infof("Selected %q (device %d of %d) as the default device",
		mgr.devices[mgr.active].Props.Name, mgr.active, count)
	return mgr, nil
}

// DeviceCount returns the number of devices in the table. Fixed after
// construction.
func (mgr *Manager) DeviceCount() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return len(mgr.devices)
}

// ActiveDeviceID returns the logical index of the active device.
func (mgr *Manager) ActiveDeviceID() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.active
}

// Devices returns a copy of the device table in logical-index order.
func (mgr *Manager) Devices() []Device {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	devices := make([]Device, len(mgr.devices))
	copy(devices, mgr.devices)
	return devices
}

// DeviceProperties returns the property snapshot of a device. An out-of-range
// index falls back to the device at logical index 0 rather than failing.
func (mgr *Manager) DeviceProperties(device int) cudart.DeviceProps {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if device < 0 || device >= len(mgr.devices) {
		device = 0
	}
	return mgr.devices[device].Props
}

// DeviceFor returns the full descriptor of a device. An out-of-range index
// falls back to the device at logical index 0, like DeviceProperties.
func (mgr *Manager) DeviceFor(device int) Device {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if device < 0 || device >= len(mgr.devices) {
		device = 0
	}
	return mgr.devices[device]
}

// NativeID returns the platform's own id for the device at a logical index,
// or -1 when the index is out of range.
func (mgr *Manager) NativeID(device int) int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if device < 0 || device >= len(mgr.devices) {
		return -1
	}
	return mgr.devices[device].NativeID
}

// DeviceIDFromNativeID returns the logical index of the device carrying the
// given native id. A miss returns DeviceCount(), an out-of-range value the
// caller must treat as not-found, never as a real index.
func (mgr *Manager) DeviceIDFromNativeID(nativeID int) int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	for i := range mgr.devices {
		if mgr.devices[i].NativeID == nativeID {
			return i
		}
	}
	return len(mgr.devices)
}

// Rank re-sorts the device table in place. Ranking is meant to run before
// any queue or handle exists: cached per-index resources do not move with
// their devices, so re-ranking a Manager that has created resources leaves
// logical indices pointing at other devices' caches. Use Options.InitialRank
// to rank at construction instead.
func (mgr *Manager) Rank(mode RankMode) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	rankDevices(mgr.devices, mode)
}

// SetActiveDevice makes the device at a logical index the active one for
// subsequent resource accessors and returns the previously active index.
//
// An index outside [0, DeviceCount()) returns -1 and changes nothing; that
// path is a sentinel, not an error, so callers on hot paths can probe
// cheaply. Platform failures return -1 with the error; when the context
// switch itself succeeded and only the queue creation failed, the switch
// stays committed and ActiveDeviceID reports the new device. Re-activating
// the already-active device re-issues the context switch but leaves the
// queue untouched.
func (mgr *Manager) SetActiveDevice(device int) (int, error) {
	return mgr.setActive(device, -1)
}

// setActive is SetActiveDevice with the native id pre-resolved (nativeID of
// -1 resolves it from the table). Construction passes it explicitly.
func (mgr *Manager) setActive(device, nativeID int) (int, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if device < 0 || device >= len(mgr.devices) {
		return -1, nil
	}
	if nativeID == -1 {
		nativeID = mgr.devices[device].NativeID
	}

	previous := mgr.active
	if err := mgr.rt.SetDevice(nativeID); err != nil {
		return -1, errors.WithMessagef(err, "switching to device %d (native id %d)", device, nativeID)
	}

	var streamErr error
	if mgr.streams[device] == nil {
		mgr.streams[device], streamErr = mgr.rt.NewStream()
	}
	mgr.active = device

	if streamErr == nil {
		mgr.state = steady
		return previous, nil
	}
	if mgr.state == steady {
		return -1, errors.WithMessagef(streamErr, "creating queue for device %d", device)
	}

	// Selecting the default device: walk the remaining devices in ranking
	// order as long as the failure is the unavailable class.
	for {
		if !errors.Is(streamErr, cudart.ErrDeviceUnavailable) {
			return -1, errors.WithMessagef(streamErr, "creating queue for device %d", device)
		}
		klog.Warningf("Device %d is unavailable, trying the next ranked device", device)
		device++
		if device >= len(mgr.devices) {
			break
		}
		nativeID = mgr.devices[device].NativeID
		if err := mgr.rt.SetDevice(nativeID); err != nil {
			return -1, errors.WithMessagef(err, "switching to device %d (native id %d)", device, nativeID)
		}
		mgr.streams[device], streamErr = mgr.rt.NewStream()
		if streamErr == nil {
			mgr.active = device
			mgr.state = steady
			return previous, nil
		}
	}
	return -1, errors.WithMessagef(streamErr, "no usable device among %d candidates", len(mgr.devices))
}

// Stream returns the execution queue of a device, creating it through a
// temporary activation when the device was never active before.
func (mgr *Manager) Stream(device int) (cudart.Stream, error) {
	mgr.mu.Lock()
	if device < 0 || device >= len(mgr.streams) {
		count := len(mgr.streams)
		mgr.mu.Unlock()
		return nil, errors.Wrapf(ErrInvalidDeviceID, "device %d of %d", device, count)
	}
	stream := mgr.streams[device]
	previous := mgr.active
	mgr.mu.Unlock()
	if stream != nil {
		return stream, nil
	}

	// Queues are created on first activation. Activate, grab the queue and
	// restore the previous selection.
	if _, err := mgr.SetActiveDevice(device); err != nil {
		return nil, err
	}
	mgr.mu.Lock()
	stream = mgr.streams[device]
	mgr.mu.Unlock()
	if _, err := mgr.SetActiveDevice(previous); err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, errors.Errorf("queue for device %d gone after activation, manager closed concurrently?", device)
	}
	return stream, nil
}

// ActiveStream returns the active device's execution queue.
func (mgr *Manager) ActiveStream() (cudart.Stream, error) {
	return mgr.Stream(mgr.ActiveDeviceID())
}

// Sync blocks until all work queued on a device's stream has completed. The
// previously active device is restored, even when the drain fails.
func (mgr *Manager) Sync(device int) error {
	previous := mgr.ActiveDeviceID()
	switched, err := mgr.SetActiveDevice(device)
	if err != nil {
		return err
	}
	if switched == -1 {
		return errors.Wrapf(ErrInvalidDeviceID, "device %d of %d", device, mgr.DeviceCount())
	}
	stream, err := mgr.ActiveStream()
	if err == nil {
		err = stream.Synchronize()
	}
	_, restoreErr := mgr.SetActiveDevice(previous)
	return multierr.Combine(err, restoreErr)
}

// EvalFlag reports whether dispatched operations should be evaluated eagerly.
// Defaults to true.
func (mgr *Manager) EvalFlag() bool {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.eval
}

// SetEvalFlag toggles eager evaluation of dispatched operations.
func (mgr *Manager) SetEvalFlag(eval bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.eval = eval
}

// Close tears down every cached handle, allocator instance and queue. The
// Manager is not usable afterwards. Close is idempotent; later calls return
// the first result.
func (mgr *Manager) Close() error {
	mgr.closeOnce.Do(func() {
		var err error
		mgr.blas.each(func(i int, h cudart.BlasHandle) {
			err = multierr.Append(err, errors.WithMessagef(h.Destroy(), "destroying BLAS handle of device %d", i))
		})
		mgr.solver.each(func(i int, h cudart.SolverHandle) {
			err = multierr.Append(err, errors.WithMessagef(h.Destroy(), "destroying solver handle of device %d", i))
		})
		mgr.sparse.each(func(i int, h cudart.SparseHandle) {
			err = multierr.Append(err, errors.WithMessagef(h.Destroy(), "destroying sparse handle of device %d", i))
		})
		mgr.mem.each(func(_ int, m cudart.MemoryManager) {
			err = multierr.Append(err, errors.WithMessage(m.Shutdown(), "shutting down memory manager"))
		})
		mgr.pinnedMem.each(func(_ int, m cudart.MemoryManager) {
			err = multierr.Append(err, errors.WithMessage(m.Shutdown(), "shutting down pinned memory manager"))
		})
		mgr.mu.Lock()
		for i, stream := range mgr.streams {
			if stream == nil {
				continue
			}
			err = multierr.Append(err, errors.WithMessagef(stream.Destroy(), "destroying queue of device %d", i))
			mgr.streams[i] = nil
		}
		mgr.mu.Unlock()
		mgr.closeErr = err
	})
	return mgr.closeErr
}
