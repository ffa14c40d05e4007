package gocuda

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"

	"github.com/emberml/gocuda/cudart"
)

// DefaultPlanCapacity bounds a PlanCache when no explicit capacity is given.
const DefaultPlanCapacity = 5

// PlanCache memoizes transform plans for one device, evicting the least
// recently used plan once full. Plans are built by the kernel layer; the
// cache only controls their lifetime.
//
// A PlanCache is not safe for concurrent use. Unlike the shared library
// handles this is deliberate: each dispatching goroutine owns its own cache,
// obtained from Manager.NewPlanCache, so lookups on the hot path take no
// lock at all.
type PlanCache struct {
	device   int
	capacity int
	plans    *linkedhashmap.Map
}

// NewPlanCache returns an empty plan cache bound to the device active at the
// time of the call. A capacity of zero or less selects DefaultPlanCapacity.
func (mgr *Manager) NewPlanCache(capacity int) *PlanCache {
	if capacity <= 0 {
		capacity = DefaultPlanCapacity
	}
	return &PlanCache{
		device:   mgr.ActiveDeviceID(),
		capacity: capacity,
		plans:    linkedhashmap.New(),
	}
}

// Get returns the plan cached under key and refreshes its recency.
func (c *PlanCache) Get(key string) (cudart.Plan, bool) {
	value, ok := c.plans.Get(key)
	if !ok {
		return nil, false
	}
	// Reinsert so the entry becomes the most recent.
	c.plans.Remove(key)
	c.plans.Put(key, value)
	return value.(cudart.Plan), true
}

// Put caches a plan under key, destroying the least recently used entry when
// the cache is full. Replacing a key destroys the plan it displaces; the
// cache owns its plans. The key encodes whatever identifies the plan to the
// transform layer (rank, dims, element type, batch).
func (c *PlanCache) Put(key string, plan cudart.Plan) {
	if old, ok := c.plans.Get(key); ok {
		c.plans.Remove(key)
		if old.(cudart.Plan) != plan {
			if err := old.(cudart.Plan).Destroy(); err != nil {
				klog.Errorf("Destroying plan %q replaced in device %d cache: %v", key, c.device, err)
			}
		}
	} else if c.plans.Size() >= c.capacity {
		oldest := c.plans.Keys()[0]
		evicted, _ := c.plans.Get(oldest)
		c.plans.Remove(oldest)
		if err := evicted.(cudart.Plan).Destroy(); err != nil {
			klog.Errorf("Destroying plan %v evicted from device %d cache: %v", oldest, c.device, err)
		}
	}
	c.plans.Put(key, plan)
}

// Device returns the logical index the cache was created against.
func (c *PlanCache) Device() int {
	return c.device
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	return c.plans.Size()
}

// Clear destroys every cached plan and empties the cache.
func (c *PlanCache) Clear() error {
	var err error
	c.plans.Each(func(_ interface{}, value interface{}) {
		err = multierr.Append(err, value.(cudart.Plan).Destroy())
	})
	c.plans.Clear()
	return err
}
