package rules

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long fetched sheet data is reused.
const DefaultTTL = 5 * time.Minute

// ErrCacheMiss is returned by Cache.Get for absent or expired entries.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores raw sheet payloads for a limited time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Cache backends accepted by NewCache.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// CacheOptions selects and configures a cache backend.
type CacheOptions struct {
	Backend   string
	Dir       string // file backend
	RedisAddr string // redis backend
}

// NewCache returns the configured backend. An empty backend means file.
func NewCache(opts CacheOptions) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultCacheDir(); err != nil {
				return nil, err
			}
		}
		return NewFileCache(dir), nil
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendRedis:
		return NewRedisCache(opts.RedisAddr), nil
	case BackendNone:
		return noCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want memory, file, redis or none)", opts.Backend)
	}
}

// DefaultCacheDir is ~/.cache/catfill.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "catfill"), nil
}

// CacheKey derives the storage key for a sheet URL.
func CacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "catfill:sheet:" + hex.EncodeToString(sum[:])
}

type noCache struct{}

func (noCache) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (noCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

// MemoryCache keeps entries for the life of the process.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, ErrCacheMiss
	}
	return e.data, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{data: append([]byte(nil), data...), expires: c.now().Add(ttl)}
	return nil
}

// FileCache writes one JSON file per key holding the payload and the time it
// was stored.
type FileCache struct {
	dir string
	now func() time.Time
}

type fileEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	TTL       string          `json:"ttl"`
	Data      json.RawMessage `json:"data"`
}

func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir, now: time.Now}
}

func (c *FileCache) path(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

func (c *FileCache) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, ErrCacheMiss
	}

	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, ErrCacheMiss
	}
	ttl, err := time.ParseDuration(e.TTL)
	if err != nil || c.now().Sub(e.Timestamp) >= ttl {
		return nil, ErrCacheMiss
	}
	return e.Data, nil
}

func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	if !json.Valid(data) {
		return fmt.Errorf("file cache only stores JSON payloads")
	}
	out, err := json.Marshal(fileEntry{Timestamp: c.now(), TTL: ttl.String(), Data: data})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, out, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path(key))
}

// RedisCache shares fetched sheets between machines or processes.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	if addr == "" {
		addr = "localhost:6379"
	}
	return &RedisCache{client: redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
		MaxRetries:  1,
	})}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Ping checks the server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
