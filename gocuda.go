// Package gocuda manages the lifecycle of CUDA devices for an array-compute
// backend: enumeration and capability ranking, active-device selection, and
// the lazily built per-device resources (execution queues, BLAS, dense-solve
// and sparse library handles, transform-plan caches, graphics-interop
// managers, allocator instances) that numeric kernels dispatch against.
//
// The platform itself is reached through cudart.Runtime. Real bindings live
// in separate modules; package sim provides a pure-Go runtime for tests and
// for development on machines without a GPU.
//
// A Manager is safe for concurrent use, with one deliberate exception
// inherited from the underlying platform model: the active-device selection
// is manager-wide, so goroutines that switch devices while others create
// resources must serialize externally. See Manager for details.
package gocuda
