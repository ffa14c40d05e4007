package gocuda

import "sort"

// RankMode selects the policy used to order the device table. All policies
// sort descending on every key and end their tie-break chain on the unique
// native id, so each one is a deterministic total order.
type RankMode int

//go:generate go tool enumer -type=RankMode ranking.go

const (
	// RankCompute orders by compute capability: major then minor version,
	// then throughput score, then total memory. The default order applied at
	// construction.
	RankCompute RankMode = iota

	// RankFlops orders by throughput score, then total memory, then compute
	// capability.
	RankFlops

	// RankMemory orders by total memory, then throughput score, then compute
	// capability.
	RankMemory

	// RankNone orders by native id alone.
	RankNone
)

// rankDevices sorts devices in place according to mode.
func rankDevices(devices []Device, mode RankMode) {
	less := compareCompute
	switch mode {
	case RankFlops:
		less = compareFlops
	case RankMemory:
		less = compareMemory
	case RankNone:
		less = compareNative
	}
	sort.SliceStable(devices, func(i, j int) bool {
		return less(&devices[i], &devices[j])
	})
}

func compareCompute(l, r *Device) bool {
	if l.Props.Major != r.Props.Major {
		return l.Props.Major > r.Props.Major
	}
	if l.Props.Minor != r.Props.Minor {
		return l.Props.Minor > r.Props.Minor
	}
	if l.Flops != r.Flops {
		return l.Flops > r.Flops
	}
	if l.Props.TotalGlobalMem != r.Props.TotalGlobalMem {
		return l.Props.TotalGlobalMem > r.Props.TotalGlobalMem
	}
	return l.NativeID > r.NativeID
}

func compareFlops(l, r *Device) bool {
	if l.Flops != r.Flops {
		return l.Flops > r.Flops
	}
	if l.Props.TotalGlobalMem != r.Props.TotalGlobalMem {
		return l.Props.TotalGlobalMem > r.Props.TotalGlobalMem
	}
	if l.Props.Major != r.Props.Major {
		return l.Props.Major > r.Props.Major
	}
	if l.Props.Minor != r.Props.Minor {
		return l.Props.Minor > r.Props.Minor
	}
	return l.NativeID > r.NativeID
}

func compareMemory(l, r *Device) bool {
	if l.Props.TotalGlobalMem != r.Props.TotalGlobalMem {
		return l.Props.TotalGlobalMem > r.Props.TotalGlobalMem
	}
	if l.Flops != r.Flops {
		return l.Flops > r.Flops
	}
	if l.Props.Major != r.Props.Major {
		return l.Props.Major > r.Props.Major
	}
	if l.Props.Minor != r.Props.Minor {
		return l.Props.Minor > r.Props.Minor
	}
	return l.NativeID > r.NativeID
}

func compareNative(l, r *Device) bool {
	return l.NativeID > r.NativeID
}
