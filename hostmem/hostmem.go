// Package hostmem inspects the host's physical memory. It backs the
// host-memory queries of the device report and the allocators' sizing
// heuristics.
package hostmem

// Total returns the host's total physical memory in bytes.
func Total() (uint64, error) {
	return total()
}
