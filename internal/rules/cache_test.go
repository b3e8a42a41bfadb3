package rules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get on empty cache = %v, expected miss", err)
	}
	if err := c.Set(ctx, "k", []byte(`[]`), time.Minute); err != nil {
		t.Fatal(err)
	}
	if data, err := c.Get(ctx, "k"); err != nil || string(data) != `[]` {
		t.Errorf("Get = %q/%v", data, err)
	}

	now = now.Add(time.Minute)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after TTL = %v, expected miss", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewFileCache(dir)
	c.now = func() time.Time { return now }

	payload := []byte(`[{"Keyword":"wine"}]`)
	if err := c.Set(ctx, CacheKey("https://example.test/s/Sheet1"), payload, 5*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// a second instance reads what the first wrote
	other := NewFileCache(dir)
	other.now = func() time.Time { return now.Add(4 * time.Minute) }
	data, err := other.Get(ctx, CacheKey("https://example.test/s/Sheet1"))
	if err != nil || string(data) != string(payload) {
		t.Errorf("Get = %q/%v", data, err)
	}

	other.now = func() time.Time { return now.Add(5 * time.Minute) }
	if _, err := other.Get(ctx, CacheKey("https://example.test/s/Sheet1")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after TTL = %v, expected miss", err)
	}

	if err := c.Set(ctx, "bad", []byte("not json"), time.Minute); err == nil {
		t.Error("expected error storing a non-JSON payload")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir)
	if err := os.WriteFile(c.path("k"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("corrupt entry = %v, expected miss", err)
	}
}

func TestNewCache(t *testing.T) {
	tests := []struct {
		backend string
		check   func(Cache) bool
		wantErr bool
	}{
		{"memory", func(c Cache) bool { _, ok := c.(*MemoryCache); return ok }, false},
		{"file", func(c Cache) bool { _, ok := c.(*FileCache); return ok }, false},
		{"", func(c Cache) bool { _, ok := c.(*FileCache); return ok }, false},
		{"redis", func(c Cache) bool { _, ok := c.(*RedisCache); return ok }, false},
		{"none", func(c Cache) bool { _, ok := c.(noCache); return ok }, false},
		{"memcached", nil, true},
	}

	for _, test := range tests {
		c, err := NewCache(CacheOptions{Backend: test.backend, Dir: filepath.Join(t.TempDir(), "cache")})
		if (err != nil) != test.wantErr {
			t.Errorf("NewCache(%q) error = %v", test.backend, err)
			continue
		}
		if err == nil && !test.check(c) {
			t.Errorf("NewCache(%q) = %T", test.backend, c)
		}
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	c := NewRedisCache("127.0.0.1:1")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := c.Get(ctx, "k")
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get on unreachable server = %v, expected a connection error", err)
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://example.test/a")
	if a == CacheKey("https://example.test/b") {
		t.Error("different URLs must not share a key")
	}
	if a != CacheKey("https://example.test/a") {
		t.Error("CacheKey must be deterministic")
	}
}
