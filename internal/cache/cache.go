package cache

import (
	"sync"
	"time"
)

// Item represents a cached value with expiration
type Item[V any] struct {
	Value      V
	Expiration int64
}

// Cache is a thread-safe in-memory TTL cache
type Cache[V any] struct {
	items map[string]Item[V]
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache with the given default TTL and starts its janitor
func New[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		items: make(map[string]Item[V]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	go c.cleanup(time.Minute)

	return c
}

// Set stores a value with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Item[V]{
		Value:      value,
		Expiration: c.now().Add(ttl).UnixNano(),
	}
}

// Get retrieves a value that has not expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	item, found := c.items[key]
	if !found {
		return zero, false
	}

	if c.now().UnixNano() > item.Expiration {
		return zero, false
	}

	return item.Value, true
}

// GetOrSet retrieves a value or computes and stores it with fn
func (c *Cache[V]) GetOrSet(key string, fn func() (V, error)) (V, error) {
	if value, found := c.Get(key); found {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, value)
	return value, nil
}

// Delete removes a value
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Close stops the janitor goroutine
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanup removes expired items periodically
func (c *Cache[V]) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purge()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[V]) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for key, item := range c.items {
		if now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// KeyHostInfo caches the agent's host description
const KeyHostInfo = "host:info"
