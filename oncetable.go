package gocuda

import "sync"

// onceTable is an indexed table of lazily built values, one independently
// locked cell per slot. Concurrent first requests for one slot build exactly
// once; requests for different slots never block each other. A build that
// fails does not latch its cell, the next request runs the builder again.
type onceTable[T any] struct {
	cells []onceCell[T]
}

type onceCell[T any] struct {
	mu    sync.Mutex
	built bool
	value T
}

func newOnceTable[T any](n int) *onceTable[T] {
	return &onceTable[T]{cells: make([]onceCell[T], n)}
}

func (t *onceTable[T]) get(i int, build func() (T, error)) (T, error) {
	c := &t.cells[i]
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built {
		return c.value, nil
	}
	value, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = value
	c.built = true
	return value, nil
}

// each visits every built cell in slot order. Builds running concurrently in
// other cells finish before their cell is visited.
func (t *onceTable[T]) each(visit func(i int, value T)) {
	for i := range t.cells {
		c := &t.cells[i]
		c.mu.Lock()
		if c.built {
			visit(i, c.value)
		}
		c.mu.Unlock()
	}
}
