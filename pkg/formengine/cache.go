package formengine

import (
	"container/list"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheConfig contains configuration options for the template cache
type CacheConfig struct {
	// MaxSize is the maximum number of templates to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached templates. 0 means no expiration.
	TTL time.Duration
}

// TemplateCache keeps template file contents in memory. Entries are dropped
// when they expire, when the file on disk changes size or modification time,
// or when the cache is full and they are the least recently used.
type TemplateCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
	group  singleflight.Group
	now    func() time.Time
}

type cachedTemplate struct {
	data    []byte
	size    int64
	modTime time.Time
}

type cacheEntry struct {
	key      string
	template *cachedTemplate
	expiry   time.Time
	element  *list.Element
}

// NewTemplateCache creates a template cache with the given configuration
func NewTemplateCache(config CacheConfig) *TemplateCache {
	return &TemplateCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
		now:    time.Now,
	}
}

// Load returns the contents of the file at path, from cache when the cached
// copy is still current. Concurrent loads of the same path share one read.
func (tc *TemplateCache) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if t, ok := tc.get(path); ok && t.size == info.Size() && t.modTime.Equal(info.ModTime()) {
		return t.data, nil
	}

	v, err, _ := tc.group.Do(path, func() (interface{}, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		t := &cachedTemplate{data: data, size: info.Size(), modTime: info.ModTime()}
		tc.set(path, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cachedTemplate).data, nil
}

// Get retrieves cached contents without touching the file system.
func (tc *TemplateCache) Get(key string) ([]byte, error) {
	if tc.config.MaxSize == 0 {
		return nil, ErrCacheDisabled
	}
	t, ok := tc.get(key)
	if !ok {
		return nil, fmt.Errorf("template %s not cached", key)
	}
	return t.data, nil
}

func (tc *TemplateCache) get(key string) (*cachedTemplate, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, exists := tc.cache[key]
	if !exists {
		return nil, false
	}
	if tc.config.TTL > 0 && tc.now().After(entry.expiry) {
		tc.removeLocked(entry)
		return nil, false
	}
	tc.lru.MoveToFront(entry.element)
	return entry.template, true
}

func (tc *TemplateCache) set(key string, t *cachedTemplate) {
	if tc.config.MaxSize == 0 {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	expiry := time.Time{}
	if tc.config.TTL > 0 {
		expiry = tc.now().Add(tc.config.TTL)
	}

	if existing, exists := tc.cache[key]; exists {
		existing.template = t
		existing.expiry = expiry
		tc.lru.MoveToFront(existing.element)
		return
	}

	if tc.lru.Len() >= tc.config.MaxSize {
		if oldest := tc.lru.Back(); oldest != nil {
			tc.removeLocked(oldest.Value.(*cacheEntry))
		}
	}

	entry := &cacheEntry{key: key, template: t, expiry: expiry}
	entry.element = tc.lru.PushFront(entry)
	tc.cache[key] = entry
}

// Remove drops a cached template.
func (tc *TemplateCache) Remove(key string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if entry, exists := tc.cache[key]; exists {
		tc.removeLocked(entry)
	}
}

func (tc *TemplateCache) removeLocked(entry *cacheEntry) {
	delete(tc.cache, entry.key)
	tc.lru.Remove(entry.element)
}

// Clear removes all templates from the cache
func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache = make(map[string]*cacheEntry)
	tc.lru = list.New()
}

// Size returns the current number of cached templates
func (tc *TemplateCache) Size() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.cache)
}
