// Package arena provides pooled, alignment-guaranteed staging buffers for
// host/device transfers.
//
// Transfers through a copy engine want the host side of the copy to start at
// a wide alignment boundary and to be reused rather than reallocated per
// operation. An Arena is a fixed-capacity bump allocator whose allocations
// all start at Alignment-byte boundaries and which can only be recycled as a
// whole. A Pool keeps arenas in power-of-two size classes for reuse across
// transfers.
//
// Pool implements the manager's allocator contract, so it can be handed to
// the device registry as a memory-manager factory:
//
//	gocuda.Options{PinnedMemoryManager: arena.Factory()}
package arena

import (
	"math/bits"
	"sync"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/emberml/gocuda/cudart"
)

// Alignment is the boundary every allocation starts at. Wide enough for the
// transfer engines' preferred burst alignment.
const Alignment = 64

// Arena is a fixed-capacity bump allocator. Allocations are only reclaimed
// together, with Reset. Not safe for concurrent use; each staging goroutine
// owns its arena.
type Arena struct {
	buf  []byte
	used int

	// class is the pool size class the arena belongs to, -1 when the arena
	// was allocated outside the pooled range.
	class int
}

// New returns an arena with the given capacity in bytes.
func New(size int) *Arena {
	return &Arena{buf: alignedBuffer(size), class: -1}
}

// alignedBuffer returns a zeroed slice of the given length whose first byte
// sits on an Alignment boundary.
func alignedBuffer(size int) []byte {
	backing := make([]byte, size+Alignment)
	shift := 0
	if rem := uintptr(unsafe.Pointer(&backing[0])) % Alignment; rem != 0 {
		shift = Alignment - int(rem)
	}
	return backing[shift : shift+size : shift+size]
}

// Alloc returns a zeroed n-byte slice starting at an Alignment boundary. It
// panics when the arena cannot fit the allocation; callers size the arena for
// the transfer they are staging.
func (a *Arena) Alloc(n int) []byte {
	if a.used+n > len(a.buf) {
		panic(errors.Errorf("arena out of memory: %d bytes requested, %d of %d in use",
			n, a.used, len(a.buf)))
	}
	p := a.buf[a.used : a.used+n : a.used+n]
	a.used += n
	a.used = (a.used + Alignment - 1) &^ (Alignment - 1)
	if a.used > len(a.buf) {
		a.used = len(a.buf)
	}
	return p
}

// Size returns the arena's capacity in bytes.
func (a *Arena) Size() int {
	return len(a.buf)
}

// Used returns how many bytes are taken, allocation rounding included.
func (a *Arena) Used() int {
	return a.used
}

// Reset invalidates all previous allocations and zeroes the used region, so
// a recycled arena never leaks bytes from an earlier transfer.
func (a *Arena) Reset() {
	clear(a.buf[:a.used])
	a.used = 0
}

// Size classes the pool keeps, 2 KiB through 16 MiB in powers of two.
// Requests above the largest class are served unpooled.
const (
	minPooledSize = 2 << 10
	maxPooledSize = 16 << 20
)

// Pool recycles arenas in power-of-two size classes. Safe for concurrent
// use. The zero value is not usable, construct with NewPool.
//
// Pool implements cudart.MemoryManager: Shutdown releases the classes and
// turns later Gets into plain unpooled allocations.
type Pool struct {
	mu      sync.Mutex
	classes []*sync.Pool
}

var _ cudart.MemoryManager = (*Pool)(nil)

// NewPool returns an empty pool.
func NewPool() *Pool {
	n := bits.TrailingZeros(maxPooledSize) - bits.TrailingZeros(minPooledSize) + 1
	classes := make([]*sync.Pool, n)
	for i := range classes {
		classes[i] = &sync.Pool{}
	}
	return &Pool{classes: classes}
}

// Factory adapts NewPool to the device registry's memory-manager factory
// shape.
func Factory() func() (cudart.MemoryManager, error) {
	return func() (cudart.MemoryManager, error) {
		return NewPool(), nil
	}
}

// Get returns a reset arena of at least size bytes, reusing a pooled one of
// the next power-of-two class when available. Oversized requests get an
// unpooled arena of exactly size bytes.
func (p *Pool) Get(size int) *Arena {
	if size <= 0 {
		size = minPooledSize
	}
	shift := bits.Len(uint(size - 1))
	if 1<<shift < minPooledSize {
		shift = bits.TrailingZeros(minPooledSize)
	}
	class := shift - bits.TrailingZeros(minPooledSize)

	p.mu.Lock()
	classes := p.classes
	p.mu.Unlock()
	if classes == nil || 1<<shift > maxPooledSize {
		return New(size)
	}
	if recycled := classes[class].Get(); recycled != nil {
		return recycled.(*Arena)
	}
	return &Arena{buf: alignedBuffer(1 << shift), class: class}
}

// Put recycles an arena obtained from Get. Unpooled arenas and arenas
// returned after Shutdown are dropped for the collector.
func (p *Pool) Put(a *Arena) {
	if a == nil || a.class < 0 {
		return
	}
	p.mu.Lock()
	classes := p.classes
	p.mu.Unlock()
	if classes == nil {
		return
	}
	a.Reset()
	classes[a.class].Put(a)
}

// Shutdown implements cudart.MemoryManager. Idempotent.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classes = nil
	return nil
}
