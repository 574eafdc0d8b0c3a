package cache

import (
	"errors"
	"testing"
	"time"
)

func TestTTLCacheExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTLCache(time.Minute).WithClock(func() time.Time { return now })

	c.Set("daily", 42)
	if v, ok := c.Get("daily"); !ok || v.(int) != 42 {
		t.Fatalf("Get() = %v, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("daily"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expiry", c.Len())
	}
}

func TestTTLCacheLoad(t *testing.T) {
	c := NewTTLCache(time.Minute)
	calls := 0
	fn := func() (any, error) {
		calls++
		return "table", nil
	}

	if _, hit, err := c.Load("k", fn); err != nil || hit {
		t.Fatalf("first Load() hit=%v err=%v", hit, err)
	}
	if v, hit, err := c.Load("k", fn); err != nil || !hit || v != "table" {
		t.Fatalf("second Load() = %v hit=%v err=%v", v, hit, err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, _, err := c.Load("bad", func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("errors must not be cached")
	}
}

func TestTTLCacheDisabled(t *testing.T) {
	c := NewTTLCache(0)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Error("zero ttl should not cache")
	}
}
