package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestLRUCacheBasics(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used and gets evicted
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be deleted")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired = %d, want 1", n)
	}
}

func TestRegistryGroupInvalidation(t *testing.T) {
	r := NewRegistry(10, time.Minute)
	defer r.Stop()

	r.Set("rate", "rate", []byte("all"))
	r.Set("rate", "pagamenti/3/rate", []byte("plan 3"))
	r.Set("pazienti", "pazienti", []byte("patients"))

	if body, ok := r.Get("rate", "pagamenti/3/rate"); !ok || !bytes.Equal(body, []byte("plan 3")) {
		t.Fatalf("Get = %q, %v", body, ok)
	}

	// Invalidating the rate group leaves pazienti alone
	r.Invalidate("rate")
	if _, ok := r.Get("rate", "rate"); ok {
		t.Fatal("rate group should be empty after invalidation")
	}
	if _, ok := r.Get("rate", "pagamenti/3/rate"); ok {
		t.Fatal("keyed entry should also be purged")
	}
	if _, ok := r.Get("pazienti", "pazienti"); !ok {
		t.Fatal("pazienti group should survive")
	}
}

func TestRegistryInvalidateUnknownGroup(t *testing.T) {
	r := NewRegistry(10, time.Minute)
	defer r.Stop()
	r.Invalidate("mai-vista") // must not panic or create the group
	if r.Size() != 0 {
		t.Fatalf("Size = %d, want 0", r.Size())
	}
}
