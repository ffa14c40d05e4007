package gocuda

import "github.com/pkg/errors"

// Error classes signaled by the manager itself. Driver-signaled classes
// (cudart.ErrDeviceUnavailable and friends) live with the Runtime interface.
var (
	// ErrNoDevices is returned by New when the runtime reports zero devices.
	// No Manager is constructed in that case.
	ErrNoDevices = errors.New("no CUDA-capable devices found")

	// ErrInvalidDeviceID classifies requests that name a logical device
	// index outside [0, DeviceCount()).
	ErrInvalidDeviceID = errors.New("device index out of range")

	// ErrNoMemoryManager is returned by the allocator accessors when no
	// factory was configured in Options.
	ErrNoMemoryManager = errors.New("no memory manager factory configured")
)
