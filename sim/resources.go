package sim

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/emberml/gocuda/cudart"
)

var (
	_ cudart.Stream        = (*Stream)(nil)
	_ cudart.BlasHandle    = (*Handle)(nil)
	_ cudart.SolverHandle  = (*Handle)(nil)
	_ cudart.SparseHandle  = (*Handle)(nil)
	_ cudart.Plan          = (*Plan)(nil)
	_ cudart.MemoryManager = (*MemoryPool)(nil)
)

// Stream is a virtual execution queue. It journals the calls made against it
// so tests can assert on drain and teardown behavior.
type Stream struct {
	device int

	mu        sync.Mutex
	syncs     int
	destroyed bool
}

// Device returns the native id the stream was created on.
func (s *Stream) Device() int {
	return s.device
}

// Synchronize implements cudart.Stream. The virtual queue is always empty,
// so this only journals the call.
func (s *Stream) Synchronize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return errors.Errorf("synchronize on destroyed stream of device %d", s.device)
	}
	s.syncs++
	return nil
}

// Destroy implements cudart.Stream. Destroying twice is an error, the same
// invalid-handle condition the real platform reports.
func (s *Stream) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return errors.Errorf("stream of device %d destroyed twice", s.device)
	}
	s.destroyed = true
	return nil
}

// Syncs returns how many times the stream was drained.
func (s *Stream) Syncs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncs
}

// Destroyed reports whether the stream was torn down.
func (s *Stream) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Handle is a virtual library context. One type serves the BLAS, solver and
// sparse kinds; Kind tells them apart.
type Handle struct {
	kind   string
	device int

	mu        sync.Mutex
	stream    cudart.Stream
	destroyed bool
}

// Kind returns which library the handle stands in for: KindBlas, KindSolver
// or KindSparse.
func (h *Handle) Kind() string {
	return h.kind
}

// Device returns the native id the handle was created on.
func (h *Handle) Device() int {
	return h.device
}

// SetStream implements the handle interfaces.
func (h *Handle) SetStream(s cudart.Stream) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return errors.Errorf("set stream on destroyed %s handle of device %d", h.kind, h.device)
	}
	h.stream = s
	return nil
}

// Destroy implements the handle interfaces.
func (h *Handle) Destroy() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return errors.Errorf("%s handle of device %d destroyed twice", h.kind, h.device)
	}
	h.destroyed = true
	return nil
}

// BoundStream returns the queue the handle was last bound to, nil when none.
func (h *Handle) BoundStream() cudart.Stream {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stream
}

// Destroyed reports whether the handle was torn down.
func (h *Handle) Destroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

// Plan is a virtual transform plan for exercising plan caches.
type Plan struct {
	key string

	mu        sync.Mutex
	destroyed bool
}

// NewPlan returns a plan identified by key.
func NewPlan(key string) *Plan {
	return &Plan{key: key}
}

// Key returns the identifier the plan was created with.
func (p *Plan) Key() string {
	return p.key
}

// Destroy implements cudart.Plan.
func (p *Plan) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return errors.Errorf("plan %q destroyed twice", p.key)
	}
	p.destroyed = true
	return nil
}

// Destroyed reports whether the plan was torn down.
func (p *Plan) Destroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}

// MemoryPool is a virtual allocator lifecycle, for exercising the manager's
// process-wide allocator caching.
type MemoryPool struct {
	name string

	mu        sync.Mutex
	shutdowns int
}

// NewMemoryPool returns a pool identified by name.
func NewMemoryPool(name string) *MemoryPool {
	return &MemoryPool{name: name}
}

// Name returns the identifier the pool was created with.
func (p *MemoryPool) Name() string {
	return p.name
}

// Shutdown implements cudart.MemoryManager.
func (p *MemoryPool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdowns++
	return nil
}

// Shutdowns returns how many times the pool was shut down.
func (p *MemoryPool) Shutdowns() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdowns
}
