package cache

import (
	"sync"
)

// cacheImpl is the implementation of the Cache interface.
type cacheImpl[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// Cache is a goroutine-safe keyed store of loaded objects such as assets, bundles or
// raw file payloads. There is no eviction policy; entries live until a caller removes
// them or clears the cache.
type Cache[K comparable, V any] interface {
	// Add stores value under key, replacing any previous entry.
	//
	// Parameters:
	//   - key: the cache key
	//   - value: the value to store
	//
	// Returns:
	//   - V: the stored value
	Add(key K, value V) V

	// AddIfAbsent stores value only when key is not present. The check and the insert
	// happen under one lock so concurrent callers cannot both insert.
	//
	// Parameters:
	//   - key: the cache key
	//   - value: the value to store when absent
	//
	// Returns:
	//   - V: the value now held for key
	//   - bool: true if value was inserted, false if an entry already existed
	AddIfAbsent(key K, value V) (V, bool)

	// Get returns the value stored under key.
	//
	// Parameters:
	//   - key: the cache key
	//
	// Returns:
	//   - V: the stored value or the zero value
	//   - bool: true if the key was found
	Get(key K) (V, bool)

	// Has reports whether key is present.
	//
	// Parameters:
	//   - key: the cache key
	//
	// Returns:
	//   - bool: true if the key was found
	Has(key K) bool

	// Remove deletes the entry for key.
	//
	// Parameters:
	//   - key: the cache key
	//
	// Returns:
	//   - V: the removed value or the zero value
	//   - bool: true if an entry was removed
	Remove(key K) (V, bool)

	// Clear removes every entry.
	Clear()

	// Len returns the number of entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int

	// ForEach calls fn for every entry. It iterates a snapshot taken under the read lock,
	// so fn may freely add or remove entries.
	//
	// Parameters:
	//   - fn: the callback receiving each key and value
	ForEach(fn func(key K, value V))

	// Find returns the first value matching predicate. Iteration order is unspecified.
	//
	// Parameters:
	//   - predicate: returns true for the wanted entry
	//
	// Returns:
	//   - V: the matching value or the zero value
	//   - bool: true if a match was found
	Find(predicate func(key K, value V) bool) (V, bool)

	// Keys returns a snapshot of all keys.
	//
	// Returns:
	//   - []K: the keys in unspecified order
	Keys() []K
}

var _ Cache[string, any] = &cacheImpl[string, any]{}

// NewCache creates an empty Cache.
//
// Returns:
//   - Cache[K, V]: the new cache
func NewCache[K comparable, V any]() Cache[K, V] {
	return &cacheImpl[K, V]{
		items: make(map[K]V),
	}
}

// NewCacheFrom creates a Cache pre-populated with the given entries.
//
// Parameters:
//   - entries: the initial entries, copied into the cache
//
// Returns:
//   - Cache[K, V]: the new cache
func NewCacheFrom[K comparable, V any](entries map[K]V) Cache[K, V] {
	c := &cacheImpl[K, V]{
		items: make(map[K]V, len(entries)),
	}
	for k, v := range entries {
		c.items[k] = v
	}
	return c
}

func (c *cacheImpl[K, V]) Add(key K, value V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return value
}

func (c *cacheImpl[K, V]) AddIfAbsent(key K, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		return existing, false
	}
	c.items[key] = value
	return value, true
}

func (c *cacheImpl[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *cacheImpl[K, V]) Has(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[key]
	return ok
}

func (c *cacheImpl[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}
	return v, ok
}

func (c *cacheImpl[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *cacheImpl[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *cacheImpl[K, V]) ForEach(fn func(key K, value V)) {
	for _, e := range c.snapshot() {
		fn(e.key, e.value)
	}
}

func (c *cacheImpl[K, V]) Find(predicate func(key K, value V) bool) (V, bool) {
	for _, e := range c.snapshot() {
		if predicate(e.key, e.value) {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

func (c *cacheImpl[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// snapshot copies the entries under the read lock so callbacks run unlocked.
func (c *cacheImpl[K, V]) snapshot() []entry[K, V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entry[K, V], 0, len(c.items))
	for k, v := range c.items {
		out = append(out, entry[K, V]{key: k, value: v})
	}
	return out
}
