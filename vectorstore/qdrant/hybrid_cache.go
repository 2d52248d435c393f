package qdrant

import "sync"

// hybridCache is the per-collection hybrid-mode cache of §5: it must
// tolerate concurrent reads and idempotent concurrent writes
// (last-writer-wins with identical values), which sync.Map provides
// directly.
type hybridCache struct {
	m sync.Map
}

func (c *hybridCache) get(name string) (bool, bool) {
	v, ok := c.m.Load(name)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

func (c *hybridCache) set(name string, hybrid bool) {
	c.m.Store(name, hybrid)
}

func (c *hybridCache) delete(name string) {
	c.m.Delete(name)
}
