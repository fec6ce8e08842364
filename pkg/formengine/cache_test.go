package formengine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestTemplateCache_Load(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "a.docx", "one")

	cache := NewTemplateCache(CacheConfig{MaxSize: 2})
	data, err := cache.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
	assert.Equal(t, 1, cache.Size())

	cached, err := cache.Get(p)
	require.NoError(t, err)
	assert.Equal(t, "one", string(cached))

	// a changed file is reloaded
	require.NoError(t, os.WriteFile(p, []byte("changed"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(p, future, future))
	data, err = cache.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "changed", string(data))

	_, err = cache.Load(filepath.Join(dir, "missing.docx"))
	assert.True(t, os.IsNotExist(err))
}

func TestTemplateCache_Eviction(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.docx", "a")
	b := writeTemp(t, dir, "b.docx", "b")
	c := writeTemp(t, dir, "c.docx", "c")

	cache := NewTemplateCache(CacheConfig{MaxSize: 2})
	for _, p := range []string{a, b} {
		_, err := cache.Load(p)
		require.NoError(t, err)
	}
	_, err := cache.Get(a) // a becomes most recently used
	require.NoError(t, err)
	_, err = cache.Load(c)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Size())
	_, err = cache.Get(b)
	assert.Error(t, err, "least recently used entry should be evicted")
	_, err = cache.Get(a)
	assert.NoError(t, err)

	cache.Remove(a)
	assert.Equal(t, 1, cache.Size())
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCache_TTL(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "a.docx", "a")

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewTemplateCache(CacheConfig{MaxSize: 4, TTL: time.Minute})
	cache.now = func() time.Time { return now }

	_, err := cache.Load(p)
	require.NoError(t, err)
	_, err = cache.Get(p)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(p)
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCache_Disabled(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "a.docx", "a")

	cache := NewTemplateCache(CacheConfig{})
	data, err := cache.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, 0, cache.Size())

	_, err = cache.Get(p)
	assert.ErrorIs(t, err, ErrCacheDisabled)
}

func TestTemplateCache_ConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "a.docx", "shared")
	cache := NewTemplateCache(CacheConfig{MaxSize: 4})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := cache.Load(p)
			assert.NoError(t, err)
			assert.Equal(t, "shared", string(data))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Size())
}
