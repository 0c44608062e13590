// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLRU(capacity int, ttl time.Duration) (*LRU[int], *manualClock) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[int](capacity, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRU_GetAdd(t *testing.T) {
	c, _ := newTestLRU(3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("a", 10)

	tests := []struct {
		key   string
		want  int
		found bool
	}{
		{"a", 10, true},
		{"b", 2, true},
		{"c", 0, false},
	}
	for _, tt := range tests {
		got, ok := c.Get(tt.key)
		if ok != tt.found || got != tt.want {
			t.Errorf("Get(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.found)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	c, _ := newTestLRU(3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// a becomes most recently used, so b is evicted next.
	c.Get("a")
	c.Add("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %s to be present", key)
		}
	}
}

func TestLRU_TTL(t *testing.T) {
	c, clock := newTestLRU(10, time.Minute)
	c.Add("a", 1)
	clock.Advance(30 * time.Second)
	c.Add("b", 2)

	clock.Advance(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be expired")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to be live")
	}

	clock.Advance(time.Minute)
	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired = %d, want 1", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestLRU_RemoveClearStats(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	c.Get("a")
	c.Get("b")

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("Stats = %d/%d/%d, want 1/1/1", hits, misses, size)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected b gone after Clear")
	}
}

func TestLRU_Defaults(t *testing.T) {
	c := NewLRU[string](0, 0)
	if c.capacity != 1000 || c.ttl != 5*time.Minute {
		t.Errorf("defaults = %d/%v", c.capacity, c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](50, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := strconv.Itoa((g * 31 + i) % 80)
				c.Add(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}
