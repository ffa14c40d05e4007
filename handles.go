package gocuda

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/emberml/gocuda/cudart"
)

// BlasHandle returns the active device's BLAS library context, creating it on
// first request and binding it to the device's queue. The handle is shared:
// every caller for the same device gets the same instance.
func (mgr *Manager) BlasHandle() (cudart.BlasHandle, error) {
	device := mgr.ActiveDeviceID()
	return mgr.blas.get(device, func() (cudart.BlasHandle, error) {
		h, err := mgr.rt.NewBlasHandle()
		if err != nil {
			return nil, errors.WithMessagef(err, "creating BLAS handle for device %d", device)
		}
		stream, err := mgr.Stream(device)
		if err == nil {
			err = h.SetStream(stream)
		}
		if err != nil {
			err = errors.WithMessagef(err, "binding BLAS handle to device %d queue", device)
			return nil, multierr.Append(err, h.Destroy())
		}
		return h, nil
	})
}

// SolverHandle returns the active device's dense-solve library context,
// creating it on first request. Unlike the BLAS and sparse handles it is not
// bound to the device's queue, and every access first drains that queue: the
// solve routines still misbehave on non-default queues, so ordering is
// enforced with a full synchronization instead.
//
// TODO: bind the queue and drop the drain once the solve routines work on
// non-default queues.
func (mgr *Manager) SolverHandle() (cudart.SolverHandle, error) {
	device := mgr.ActiveDeviceID()
	h, err := mgr.solver.get(device, func() (cudart.SolverHandle, error) {
		h, err := mgr.rt.NewSolverHandle()
		if err != nil {
			return nil, errors.WithMessagef(err, "creating solver handle for device %d", device)
		}
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	stream, err := mgr.Stream(device)
	if err != nil {
		return nil, err
	}
	if err := stream.Synchronize(); err != nil {
		return nil, errors.WithMessagef(err, "draining device %d queue before solve", device)
	}
	return h, nil
}

// SparseHandle returns the active device's sparse library context, creating
// it on first request and binding it to the device's queue.
func (mgr *Manager) SparseHandle() (cudart.SparseHandle, error) {
	device := mgr.ActiveDeviceID()
	return mgr.sparse.get(device, func() (cudart.SparseHandle, error) {
		h, err := mgr.rt.NewSparseHandle()
		if err != nil {
			return nil, errors.WithMessagef(err, "creating sparse handle for device %d", device)
		}
		stream, err := mgr.Stream(device)
		if err == nil {
			err = h.SetStream(stream)
		}
		if err != nil {
			err = errors.WithMessagef(err, "binding sparse handle to device %d queue", device)
			return nil, multierr.Append(err, h.Destroy())
		}
		return h, nil
	})
}

// MemoryManager returns the process-wide device allocator, built on first
// request by the factory configured in Options.
func (mgr *Manager) MemoryManager() (cudart.MemoryManager, error) {
	return mgr.mem.get(0, func() (cudart.MemoryManager, error) {
		if mgr.memFactory == nil {
			return nil, errors.WithMessage(ErrNoMemoryManager, "device allocator")
		}
		return mgr.memFactory()
	})
}

// PinnedMemoryManager returns the process-wide pinned-memory allocator,
// built on first request by the factory configured in Options.
func (mgr *Manager) PinnedMemoryManager() (cudart.MemoryManager, error) {
	return mgr.pinnedMem.get(0, func() (cudart.MemoryManager, error) {
		if mgr.pinnedFactory == nil {
			return nil, errors.WithMessage(ErrNoMemoryManager, "pinned allocator")
		}
		return mgr.pinnedFactory()
	})
}
