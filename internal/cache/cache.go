package cache

import "sync"

// Cache is a generic thread-safe LRU cache bounded by total entry cost.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	order   ring[K, V]
	cost    func(V) int64
	limit   int64
	total   int64

	hits, misses, evictions uint64
}

// New creates a cache holding at most limit total cost. A nil cost function
// counts every entry as 1. A limit of 0 or less disables caching: Set is a
// no-op and Get always misses.
func New[K comparable, V any](limit int64, cost func(V) int64) *Cache[K, V] {
	if cost == nil {
		cost = func(V) int64 { return 1 }
	}
	c := &Cache[K, V]{
		entries: make(map[K]*entry[K, V]),
		cost:    cost,
		limit:   limit,
	}
	c.order.init()
	return c
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.touch(e)
	return e.value, true
}

// Set stores a value in the cache, evicting least recently used entries
// while the total cost exceeds the limit. A value costing more than the
// whole limit is not stored.
func (c *Cache[K, V]) Set(key K, value V) {
	cost := c.cost(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limit <= 0 || cost > c.limit {
		c.remove(key)
		return
	}

	e, ok := c.entries[key]
	if ok {
		c.total += cost - e.cost
		e.value, e.cost = value, cost
	} else {
		e = &entry[K, V]{key: key, value: value, cost: cost}
		c.entries[key] = e
		c.total += cost
	}
	c.order.touch(e)

	for c.total > c.limit {
		old := c.order.oldest()
		if old == nil {
			break
		}
		c.remove(old.key)
		c.evictions++
	}
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.remove(key)
}

// DeleteFunc removes every entry whose key satisfies match.
func (c *Cache[K, V]) DeleteFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.entries {
		if match(key) {
			c.remove(key)
			n++
		}
	}
	return n
}

// Clear removes all entries from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.order.init()
	c.total = 0
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Cost:      c.total,
		Limit:     c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if lookups := c.hits + c.misses; lookups > 0 {
		s.HitRate = float64(c.hits) / float64(lookups)
	}
	return s
}

// remove deletes key. Caller must hold c.mu.
func (c *Cache[K, V]) remove(key K) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.unlink(e)
	c.total -= e.cost
	delete(c.entries, key)
	return true
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Cost is the summed cost of all entries.
	Cost int64
	// Limit is the cost limit.
	Limit int64
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of evicted entries.
	Evictions uint64
}
