package cache

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)}
	c := New[string](ttl)
	c.now = clock.now
	t.Cleanup(c.Close)
	return c, clock
}

func TestGetSetExpiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute)

	if _, ok := c.Get("15"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("15", "route")
	if v, ok := c.Get("15"); !ok || v != "route" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	clock.advance(59 * time.Second)
	if _, ok := c.Get("15"); !ok {
		t.Error("expected entry to survive before TTL")
	}

	clock.advance(time.Second)
	if _, ok := c.Get("15"); ok {
		t.Error("expected entry to expire at TTL")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	c, clock := newTestCache(t, time.Hour)

	c.Set("a", "1")
	clock.advance(30 * time.Minute)
	c.Set("b", "2")
	clock.advance(31 * time.Minute)

	c.sweep()
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after sweep, got %d", c.Len())
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected unexpired entry to remain")
	}
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	c.Set("a", "1")
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected deleted key to miss")
	}
}

func TestGetOrLoad(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	calls := 0
	load := func() (string, error) {
		calls++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("k", load)
		if err != nil || v != "loaded" {
			t.Fatalf("unexpected result %q %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected loader called once, got %d", calls)
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	boom := errors.New("boom")

	if _, err := c.GetOrLoad("k", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected nothing cached after error, got %d entries", c.Len())
	}

	v, err := c.GetOrLoad("k", func() (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Errorf("expected retry to load, got %q %v", v, err)
	}
}

func TestDisabledCache(t *testing.T) {
	c := New[int](0)
	defer c.Close()

	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Error("expected disabled cache to miss")
	}

	calls := 0
	for i := 0; i < 2; i++ {
		c.GetOrLoad("a", func() (int, error) { calls++; return 1, nil })
	}
	if calls != 2 {
		t.Errorf("expected loader on every call, got %d", calls)
	}
}

func TestCloseTwice(t *testing.T) {
	c := New[int](time.Minute)
	c.Close()
	c.Close()
}
