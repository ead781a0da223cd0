package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(cfg Config) (*Cache[string, int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	c := New[string, int](cfg)
	c.now = clock.Now
	return c, clock
}

func TestGetSet(t *testing.T) {
	c, _ := newTestCache(DefaultConfig())

	if _, ok := c.Get("a"); ok {
		t.Error("Get() on empty cache should miss")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get() = %d, %v", v, ok)
	}

	hits, misses, rate := c.Stats()
	if hits != 1 || misses != 1 || rate != 50 {
		t.Errorf("Stats() = %d, %d, %v", hits, misses, rate)
	}
}

func TestExpiry(t *testing.T) {
	c, clock := newTestCache(Config{MaxItems: 10, TTL: time.Minute})

	c.Set("short", 1)
	c.SetWithTTL("forever", 2, 0)
	clock.Advance(2 * time.Minute)

	if _, ok := c.Get("short"); ok {
		t.Error("expired entry should miss")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Error("entry without TTL should not expire")
	}
	if removed := c.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() removed %d, want 1", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestEviction(t *testing.T) {
	c, clock := newTestCache(Config{MaxItems: 2, TTL: time.Hour})

	c.Set("a", 1)
	clock.Advance(time.Second)
	c.Set("b", 2)
	clock.Advance(time.Second)
	c.Set("a", 10)
	c.Set("c", 3)

	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("oldest entry b should have been evicted")
	}
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("a = %d, want 10", v)
	}
}

func TestGetOrSet(t *testing.T) {
	c, _ := newTestCache(DefaultConfig())

	calls := 0
	fn := func() int { calls++; return 42 }

	for i := 0; i < 3; i++ {
		if v := c.GetOrSet("k", fn); v != 42 {
			t.Errorf("GetOrSet() = %d", v)
		}
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestDeleteClear(t *testing.T) {
	c, _ := newTestCache(DefaultConfig())
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should miss")
	}
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear() = %d", c.Size())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	c := New[string, int](Config{TTL: time.Millisecond})
	c.Set("a", 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.Size() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.Size() != 0 {
		t.Error("Run() should remove expired entries")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop")
	}
}
