package gocuda

import (
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/emberml/gocuda/cudart"
)

// GraphicsManager tracks the graphics resources registered against one
// device for interop with a rendering context. Mapping and unmapping of the
// buffers belongs to the graphics layer; this only keeps the per-device
// registration table alive for the life of the Manager.
type GraphicsManager struct {
	device int

	mu        sync.Mutex
	resources map[uint64]uintptr
}

func newGraphicsManager(device int) *GraphicsManager {
	return &GraphicsManager{
		device:    device,
		resources: make(map[uint64]uintptr),
	}
}

// Device returns the logical index the manager serves.
func (g *GraphicsManager) Device() int {
	return g.device
}

// Track records the platform resource handle registered for a graphics
// object id, replacing any previous registration.
func (g *GraphicsManager) Track(id uint64, handle uintptr) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resources[id] = handle
}

// Resource returns the platform resource handle registered for a graphics
// object id.
func (g *GraphicsManager) Resource(id uint64) (uintptr, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	handle, ok := g.resources[id]
	return handle, ok
}

// Release drops the registration for a graphics object id.
func (g *GraphicsManager) Release(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.resources, id)
}

// Len returns the number of registered resources.
func (g *GraphicsManager) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.resources)
}

// GraphicsInteropCapable reports whether the platform can service graphics
// interop at all. The probe runs at most once per Manager, not once per
// device: a cudart.ErrOSSupport answer records false for the life of the
// Manager and emits a diagnostic, every other answer (errors included)
// leaves the platform considered capable.
func (mgr *Manager) GraphicsInteropCapable() bool {
	mgr.interopOnce.Do(func() {
		mgr.interopCapable = true
		if _, err := mgr.rt.GLDeviceCount(mgr.DeviceCount()); errors.Is(err, cudart.ErrOSSupport) {
			mgr.interopCapable = false
			klog.Warningf("No device capable of graphics interop, falling back to copies through the host: %v", err)
			klog.Warningf("This happens when every device runs in TCC mode or none is connected to a display")
		}
	})
	return mgr.interopCapable
}

// InteropManager returns the active device's graphics-resource manager,
// creating it on first request. The capability probe runs as a side effect;
// an incapable platform still gets a manager, and the graphics layer is
// expected to consult GraphicsInteropCapable and fall back to host copies.
func (mgr *Manager) InteropManager() (*GraphicsManager, error) {
	mgr.GraphicsInteropCapable()
	device := mgr.ActiveDeviceID()
	return mgr.gfx.get(device, func() (*GraphicsManager, error) {
		return newGraphicsManager(device), nil
	})
}
