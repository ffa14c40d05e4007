package sim

import "fmt"

// DeviceSpec describes one virtual device.
type DeviceSpec struct {
	Name            string
	Major, Minor    int
	MemoryBytes     uint64
	MultiProcessors int
	ClockRateKHz    int

	// TCC marks the device as compute-only; it will not count as
	// interop-capable.
	TCC bool
}

// DefaultCatalog is a mixed pair of boards whose ranking outcome is easy to
// eyeball in reports. Native id 0 is the weaker board, so compute-capability
// ranking visibly reorders them.
var DefaultCatalog = []DeviceSpec{
	{
		Name:            "GeForce GTX 750 Ti",
		Major:           5,
		Minor:           0,
		MemoryBytes:     2 << 30,
		MultiProcessors: 5,
		ClockRateKHz:    1084500,
	},
	{
		Name:            "GeForce GTX 1080",
		Major:           6,
		Minor:           1,
		MemoryBytes:     8 << 30,
		MultiProcessors: 20,
		ClockRateKHz:    1733500,
	},
}

// Catalog returns n specs cycling over DefaultCatalog, names suffixed with
// the native id so every virtual board stays distinguishable.
func Catalog(n int) []DeviceSpec {
	specs := make([]DeviceSpec, 0, n)
	for i := 0; i < n; i++ {
		spec := DefaultCatalog[i%len(DefaultCatalog)]
		spec.Name = fmt.Sprintf("%s #%d", spec.Name, i)
		specs = append(specs, spec)
	}
	return specs
}
