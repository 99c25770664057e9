package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func countJSONEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading cache dir: %v", err)
	}
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			n++
		}
	}
	return n
}

func TestCache_PutGet(t *testing.T) {
	c, err := New(true, t.TempDir(), 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	key := BuildCacheKey("azure", "gpt-4o", "classify this change")
	value := `{"intent":"refactor","confidence":0.8}`

	if _, ok := c.Get(key); ok {
		t.Error("expected miss before put")
	}
	if err := c.Put(key, value); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got != value {
		t.Errorf("Get = %q, want %q", got, value)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 1)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if err := c.Put("expiring", "data"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if _, ok := c.Get("expiring"); !ok {
		t.Error("expected hit before expiration")
	}

	time.Sleep(1100 * time.Millisecond)

	if _, ok := c.Get("expiring"); ok {
		t.Error("expected miss after TTL")
	}
	// The expired entry is deleted on read.
	if n := countJSONEntries(t, dir); n != 0 {
		t.Errorf("%d entries on disk after expired read, want 0", n)
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("cache should be disabled")
	}
	if err := c.Put("key", "value"); err != nil {
		t.Errorf("Put on disabled cache errored: %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Error("Get on disabled cache should always miss")
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear on disabled cache errored: %v", err)
	}
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for _, key := range []string{"a", "b", "c", "d", "e"} {
		if err := c.Put(key, "data"); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}
	if n := countJSONEntries(t, dir); n != 5 {
		t.Fatalf("%d entries before clear, want 5", n)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n := countJSONEntries(t, dir); n != 0 {
		t.Errorf("%d entries after clear, want 0", n)
	}
}

func TestCache_GetStats(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0", stats.Entries)
	}

	c.Put("key1", "value1")
	c.Put("key2", "value2")

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalBytes <= 0 {
		t.Error("TotalBytes should be positive")
	}
	if stats.Dir != dir {
		t.Errorf("Dir = %q, want %q", stats.Dir, dir)
	}
}

func TestHashKey(t *testing.T) {
	h1 := HashKey("test")
	h2 := HashKey("test")
	h3 := HashKey("other")

	if h1 != h2 {
		t.Error("same input must hash identically")
	}
	if h1 == h3 {
		t.Error("different inputs must hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}

func TestBuildCacheKey(t *testing.T) {
	k1 := BuildCacheKey("azure", "gpt-4o", "prompt content")
	k2 := BuildCacheKey("azure", "gpt-4o", "prompt content")
	k3 := BuildCacheKey("anthropic", "claude-sonnet-4-20250514", "prompt content")

	if k1 != k2 {
		t.Error("same inputs must produce the same key")
	}
	if k1 == k3 {
		t.Error("different providers must produce different keys")
	}
}
