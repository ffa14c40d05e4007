package capi

// Code is the stable status contract of the binding surface. Values are part
// of the ABI and never change between releases; bindings compiled against
// one release stay valid against the next. Gaps between the blocks leave
// room for new conditions of each class.
type Code int

//go:generate go tool enumer -type=Code codes.go

const (
	// Success is the zero code, returned when the operation completed.
	Success Code = 0

	// ErrNoDevice reports that no CUDA-capable device is present.
	ErrNoDevice Code = 101
	// ErrDeviceUnavailable reports devices in exclusive or prohibited
	// compute modes.
	ErrDeviceUnavailable Code = 102

	// ErrInvalidArg reports an argument outside its documented domain, such
	// as a device index out of range.
	ErrInvalidArg Code = 201

	// ErrDriver reports failures attributed to the installed driver.
	ErrDriver Code = 401
	// ErrRuntime reports failures attributed to the platform runtime; also
	// the catch-all for internal errors carrying no more specific class.
	ErrRuntime Code = 402
	// ErrNotSupported reports queries the current platform does not
	// implement.
	ErrNotSupported Code = 403

	// ErrNoMemory reports allocator failures, including a missing allocator
	// configuration.
	ErrNoMemory Code = 501

	// ErrInternal reports a panic caught at the binding surface.
	ErrInternal Code = 998
	// ErrUnknown is reserved for conditions that cannot be classified at
	// all. Not currently produced.
	ErrUnknown Code = 999
)
