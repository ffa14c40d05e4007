// Package cudart declares the CUDA driver and runtime surface consumed by the
// device manager.
//
// It is a plain Go interface so that real bindings (cgo over libcudart and the
// library handles) and the pure-Go simulator in package sim are
// interchangeable: the manager layer holds no platform calls of its own.
//
// Stream and handle constructors bind their result to the runtime's current
// device, so callers are expected to issue SetDevice first. The manager does
// this for every creation it performs.
package cudart

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Error classes a Runtime implementation is expected to wrap, so the manager
// can react to the condition without knowing platform error numbers.
var (
	// ErrDeviceUnavailable corresponds to devices in exclusive or prohibited
	// compute modes: present, but not accepting a new context.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrNotSupported marks queries a platform does not implement, such as
	// the human-readable driver string outside of Linux desktop systems.
	ErrNotSupported = errors.New("not supported on this platform")

	// ErrOSSupport corresponds to operating-system support failures from the
	// graphics-interop probe, reported when no device can service GL interop.
	ErrOSSupport = errors.New("operating system support failure")
)

// DeviceProps is the property snapshot of one device, taken once at
// enumeration time.
type DeviceProps struct {
	// Name is the marketing name as reported by the driver, unsanitized.
	Name string

	// UUID identifies the physical board across processes and reorderings.
	UUID uuid.UUID

	// Major and Minor form the compute capability, e.g. 6 and 1 for sm_61.
	Major int
	Minor int

	// TotalGlobalMem is the device memory size in bytes.
	TotalGlobalMem uint64

	// MultiProcessorCount is the number of streaming multiprocessors.
	MultiProcessorCount int

	// ClockRateKHz is the peak core clock in kilohertz.
	ClockRateKHz int

	// TCCDriver marks boards running in compute-only (TCC) mode. Those
	// cannot service graphics interop.
	TCCDriver bool
}

// Runtime is the driver surface the device manager runs against.
type Runtime interface {
	// DeviceCount reports how many devices the runtime can see.
	DeviceCount() (int, error)

	// DeviceProperties snapshots the properties of the device with the given
	// native id, in [0, DeviceCount()).
	DeviceProperties(nativeID int) (DeviceProps, error)

	// SetDevice switches the runtime's current-device context. Subsequent
	// stream and handle creations land on this device.
	SetDevice(nativeID int) error

	// NewStream creates an execution queue on the current device.
	NewStream() (Stream, error)

	// NewBlasHandle creates a dense linear-algebra library context on the
	// current device.
	NewBlasHandle() (BlasHandle, error)

	// NewSolverHandle creates a dense-solve library context on the current
	// device.
	NewSolverHandle() (SolverHandle, error)

	// NewSparseHandle creates a sparse linear-algebra library context on the
	// current device.
	NewSparseHandle() (SparseHandle, error)

	// RuntimeVersion returns the toolkit version the runtime was built
	// against, in the usual packed form: 11040 for 11.4.
	RuntimeVersion() (int, error)

	// DriverVersion returns the packed version of the installed driver.
	DriverVersion() (int, error)

	// DriverVersionString returns the human-readable driver description.
	// Platforms without such a query return ErrNotSupported.
	DriverVersionString() (string, error)

	// GLDeviceCount reports how many of the first deviceCount devices can
	// service graphics interop. Inability at the operating-system level,
	// rather than per device, is reported as ErrOSSupport.
	GLDeviceCount(deviceCount int) (int, error)
}

// Stream is a per-device ordered execution queue.
type Stream interface {
	// Synchronize blocks until all work queued so far has completed.
	Synchronize() error

	// Destroy releases the queue. Queued work may still be draining; callers
	// synchronize first when that matters.
	Destroy() error
}

// BlasHandle is a dense linear-algebra library context. One is cached per
// device and shared by all callers.
type BlasHandle interface {
	// SetStream routes the handle's operations onto the given queue.
	SetStream(Stream) error
	Destroy() error
}

// SolverHandle is a dense-solve library context, cached per device.
type SolverHandle interface {
	SetStream(Stream) error
	Destroy() error
}

// SparseHandle is a sparse linear-algebra library context, cached per device.
type SparseHandle interface {
	SetStream(Stream) error
	Destroy() error
}

// Plan is a transform plan built by the kernel layer. The manager's plan
// caches only control its lifetime.
type Plan interface {
	Destroy() error
}

// MemoryManager is the lifecycle contract of an allocator instance. The
// manager caches one general-purpose and one pinned instance per process and
// shuts them down on Close; allocation policy itself lives with the
// implementation.
type MemoryManager interface {
	Shutdown() error
}
