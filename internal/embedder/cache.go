package embedder

import (
	"container/list"
	"sync"
)

// FIFOCache is a bounded in-memory embedding cache. Eviction follows insertion
// order: reads do not refresh an entry, and overwriting an existing key keeps
// its original position.
type FIFOCache struct {
	capacity int
	mu       sync.Mutex

	entries map[string]*list.Element
	order   *list.List // front = oldest insert
}

type cacheEntry struct {
	key    string
	vector []float32
}

// creates a FIFO cache holding at most capacity vectors
func NewFIFOCache(capacity int) *FIFOCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}

	return &FIFOCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// returns a copy of the cached vector
func (c *FIFOCache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	return cloneVector(el.Value.(*cacheEntry).vector), true
}

// stores a vector, evicting the oldest inserted entries while over capacity
func (c *FIFOCache) Set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).vector = cloneVector(vector)
		return
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, vector: cloneVector(vector)})

	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

func (c *FIFOCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	return ok
}

func (c *FIFOCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *FIFOCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// must be called with lock held
func (c *FIFOCache) evictOldest() {
	oldest := c.order.Front()
	if oldest == nil {
		return
	}

	c.order.Remove(oldest)
	delete(c.entries, oldest.Value.(*cacheEntry).key)
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}

	out := make([]float32, len(v))
	copy(out, v)

	return out
}
