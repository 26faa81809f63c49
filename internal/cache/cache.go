package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultMaxSize is the cache capacity used when none is configured.
const DefaultMaxSize = 64

// Stats reports cache occupancy and effectiveness counters.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// entry is the stored value plus its creation time for TTL checks.
// Entries are replaced wholesale, never mutated in place.
type entry struct {
	key       string
	value     string
	createdAt time.Time
}

// Cache is a classic LRU with optional TTL expiry.
// The order list front is the most recently used entry; eviction always
// takes the back. All operations are O(1) average.
type Cache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	hits      uint64
	misses    uint64
	evictions uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source, for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithTTL sets the entry time-to-live. Zero means never expire.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// New creates a cache holding at most maxSize entries.
// Non-positive sizes fall back to DefaultMaxSize.
func New(maxSize int, opts ...Option) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	c := &Cache{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, marking it most recently used.
// An entry past its TTL is evicted and reported absent.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}

	e := el.Value.(*entry)
	if c.ttl > 0 && c.now().Sub(e.createdAt) > c.ttl {
		c.removeElement(el)
		c.evictions++
		c.misses++
		return "", false
	}

	c.order.MoveToFront(el)
	c.hits++
	return e.value, true
}

// Set stores value under key. An existing key is replaced and refreshed;
// a new key at capacity evicts the least recently used entry first.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value = &entry{key: key, value: value, createdAt: c.now()}
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		c.evictOldest()
	}
	el := c.order.PushFront(&entry{key: key, value: value, createdAt: c.now()})
	c.items[key] = el
}

// Clear discards all entries. Counters are preserved.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Resize changes the capacity, evicting oldest entries as needed to fit.
// Non-positive sizes fall back to DefaultMaxSize.
func (c *Cache) Resize(maxSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	c.maxSize = maxSize
	for c.order.Len() > c.maxSize {
		c.evictOldest()
	}
}

// SetTTL changes the time-to-live for subsequent lookups.
// Zero disables expiry. Existing entries keep their creation times.
func (c *Cache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// Stats returns current occupancy and counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:      c.order.Len(),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// evictOldest removes the least recently used entry. Caller holds the lock.
func (c *Cache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.removeElement(el)
	c.evictions++
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
