package cache

import (
	"testing"
	"time"
)

func TestGetAbsent(t *testing.T) {
	c := New(4)
	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned a value")
	}
}

func TestSetGet(t *testing.T) {
	c := New(4)
	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("Get(k) = %q, %v, want v, true", got, ok)
	}
}

func TestEvictLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3") // evicts a

	if _, ok := c.Get("a"); ok {
		t.Error("a should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should survive")
	}
}

func TestGetProtectsFromEviction(t *testing.T) {
	c := New(2)
	c.Set("a", "1")
	c.Set("b", "2")

	// Touch a so b becomes least recently used.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}

	c.Set("c", "3") // must evict b, not a

	if _, ok := c.Get("a"); !ok {
		t.Error("a was evicted despite recent use")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
}

func TestSetExistingRefreshes(t *testing.T) {
	c := New(2)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "new") // refresh, no eviction needed
	c.Set("c", "3")   // evicts b

	if got, ok := c.Get("a"); !ok || got != "new" {
		t.Errorf("Get(a) = %q, %v, want new, true", got, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
}

func TestTTLExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	c := New(4, WithClock(clock), WithTTL(2*time.Second))

	c.Set("k", "v")

	now = time.Unix(1001, 0)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry should be alive at t+1")
	}

	now = time.Unix(1003, 0)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should be expired at t+3")
	}

	// Expired entry is gone, not just hidden.
	if st := c.Stats(); st.Size != 0 {
		t.Errorf("Size = %d after expiry, want 0", st.Size)
	}
}

func TestTTLZeroNeverExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New(4, WithClock(func() time.Time { return now }))

	c.Set("k", "v")
	now = now.Add(1000 * time.Hour)

	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired with TTL disabled")
	}
}

func TestSetTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New(4, WithClock(func() time.Time { return now }))

	c.Set("k", "v")
	c.SetTTL(time.Second)
	now = time.Unix(1005, 0)

	if _, ok := c.Get("k"); ok {
		t.Error("entry should expire after SetTTL")
	}
}

func TestResizeDownEvictsOldest(t *testing.T) {
	c := New(4)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	c.Resize(1)

	if st := c.Stats(); st.Size != 1 || st.MaxSize != 1 {
		t.Errorf("Stats = %+v, want Size 1 MaxSize 1", st)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("most recently used entry should survive resize")
	}
}

func TestClear(t *testing.T) {
	c := New(4)
	c.Set("a", "1")
	c.Clear()

	if st := c.Stats(); st.Size != 0 {
		t.Errorf("Size = %d after Clear, want 0", st.Size)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived Clear")
	}
}

func TestStatsCounters(t *testing.T) {
	c := New(1)
	c.Set("a", "1")
	c.Get("a")
	c.Get("missing")
	c.Set("b", "2") // evicts a

	st := c.Stats()
	if st.Hits != 1 {
		t.Errorf("Hits = %d, want 1", st.Hits)
	}
	if st.Misses != 1 {
		t.Errorf("Misses = %d, want 1", st.Misses)
	}
	if st.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", st.Evictions)
	}
}
