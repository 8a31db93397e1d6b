package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestCacheAddGet(t *testing.T) {
	c := NewCache[string, int]()

	c.Add("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("expected (1, true), got (%d, %v)", v, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected missing key to not exist")
	}

	c.Add("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("expected overwrite to 2, got %d", v)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

func TestCacheAddIfAbsent(t *testing.T) {
	c := NewCache[string, int]()

	v, inserted := c.AddIfAbsent("a", 1)
	if !inserted || v != 1 {
		t.Errorf("expected first insert to win, got (%d, %v)", v, inserted)
	}
	v, inserted = c.AddIfAbsent("a", 2)
	if inserted || v != 1 {
		t.Errorf("expected existing value 1, got (%d, %v)", v, inserted)
	}
}

func TestCacheAddIfAbsentConcurrent(t *testing.T) {
	c := NewCache[string, int]()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, inserted := c.AddIfAbsent("key", i); inserted {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly one insert, got %d", winners)
	}
}

func TestCacheRemoveClear(t *testing.T) {
	c := NewCacheFrom(map[string]int{"a": 1, "b": 2, "c": 3})

	v, ok := c.Remove("b")
	if !ok || v != 2 {
		t.Errorf("expected to remove 2, got (%d, %v)", v, ok)
	}
	if c.Has("b") {
		t.Error("expected b to be gone")
	}
	if _, ok := c.Remove("b"); ok {
		t.Error("expected second remove to report absence")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestCacheForEachAllowsMutation(t *testing.T) {
	c := NewCache[string, int]()
	for i := 0; i < 10; i++ {
		c.Add(strconv.Itoa(i), i)
	}

	seen := 0
	c.ForEach(func(key string, value int) {
		seen++
		c.Remove(key)
	})

	if seen != 10 {
		t.Errorf("expected 10 visits, got %d", seen)
	}
	if c.Len() != 0 {
		t.Errorf("expected all entries removed, got %d", c.Len())
	}
}

func TestCacheFind(t *testing.T) {
	c := NewCacheFrom(map[string]int{"a": 1, "b": 20, "c": 3})

	v, ok := c.Find(func(_ string, value int) bool { return value > 10 })
	if !ok || v != 20 {
		t.Errorf("expected (20, true), got (%d, %v)", v, ok)
	}

	if _, ok := c.Find(func(_ string, value int) bool { return value > 100 }); ok {
		t.Error("expected no match")
	}

	if keys := c.Keys(); len(keys) != 3 {
		t.Errorf("expected 3 keys, got %d", len(keys))
	}
}
