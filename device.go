package gocuda

import (
	"github.com/emberml/gocuda/cudart"
)

// Device is one enumerated device: its property snapshot, the derived
// throughput score used for ranking and the platform's own id for it.
// Immutable once the Manager is constructed.
type Device struct {
	Props cudart.DeviceProps

	// Flops is MultiProcessorCount * cores-per-multiprocessor * ClockRateKHz.
	// Unknown compute versions score zero and rank last.
	Flops int64

	// NativeID is the platform's numbering, assigned at enumeration. It can
	// differ from the logical index once devices are ranked.
	NativeID int
}

// Cores per multiprocessor, keyed by compute version packed as 0xMm.
var smCores = map[int]int{
	0x10: 8,
	0x11: 8,
	0x12: 8,
	0x13: 8,
	0x20: 32,
	0x21: 48,
	0x30: 192,
	0x32: 192,
	0x35: 192,
	0x37: 192,
	0x50: 128,
	0x52: 128,
	0x53: 128,
	0x60: 128,
	0x61: 64,
	0x62: 128,
	0x70: 64,
	0x72: 64,
	0x75: 64,
	0x80: 64,
	0x86: 128,
	0x87: 128,
	0x89: 128,
	0x90: 128,
}

func computeToCores(major, minor int) int {
	return smCores[major<<4|minor]
}

func throughputScore(props cudart.DeviceProps) int64 {
	cores := computeToCores(props.Major, props.Minor)
	return int64(props.MultiProcessorCount) * int64(cores) * int64(props.ClockRateKHz)
}
