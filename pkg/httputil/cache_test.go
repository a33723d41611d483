package httputil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moviesURL = "https://cdn.rawgit.com/freeCodeCamp/testable-projects-fcc/a80ce8f9/src/data/tree_map/movie-data.json"

func TestCacheStoresResponseEntries(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	in := entry{Body: []byte(movies), ETag: `"abc"`, LastModified: "Mon, 02 Jan 2006 15:04:05 GMT"}
	require.NoError(t, c.Set(moviesURL, in))

	var out entry
	ok, err := c.Get(moviesURL, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)

	// Set leaves no temporary files behind.
	names, err := os.ReadDir(c.Dir())
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestCacheMissLeavesDestination(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	out := entry{ETag: "untouched"}
	ok, err := c.Get(moviesURL, &out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "untouched", out.ETag)
}

func TestCacheExpiredEntryIsStillDecoded(t *testing.T) {
	c, err := NewCache(t.TempDir(), 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, c.Set(moviesURL, entry{Body: []byte(movies), ETag: `"v1"`}))

	time.Sleep(20 * time.Millisecond)

	var stale entry
	ok, err := c.Get(moviesURL, &stale)
	assert.ErrorIs(t, err, ErrExpired)
	assert.False(t, ok)
	assert.Equal(t, `"v1"`, stale.ETag, "stale entry should be decoded for revalidation")

	// A 304 from the origin renews the entry.
	require.NoError(t, c.Touch(moviesURL))
	ok, err = c.Get(moviesURL, &stale)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	require.NoError(t, err)
	require.NoError(t, c.Set("k", "v"))

	path := c.keyPath("k")
	old := time.Now().Add(-365 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	var v string
	ok, err := c.Get("k", &v)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheCorruptEntry(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.keyPath(moviesURL), []byte("{not json"), 0o644))

	var out entry
	ok, err := c.Get(moviesURL, &out)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewCacheDefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := NewCache("", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", "treemap", "http"), c.Dir())
	assert.Equal(t, time.Hour, c.TTL())
	assert.DirExists(t, c.Dir())
}

func TestCacheNamespace(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	get := c.Namespace("GET ")
	require.NoError(t, get.Set(moviesURL, "from GET"))

	var v string
	ok, _ := c.Get(moviesURL, &v)
	assert.False(t, ok, "root cache must not see namespaced keys")

	ok, err = get.Get(moviesURL, &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from GET", v)

	// Chained namespaces concatenate their prefixes.
	chained := c.Namespace("GET").Namespace(" ")
	ok, err = chained.Get(moviesURL, &v)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, c.Dir(), get.Dir())
	assert.Equal(t, c.TTL(), get.TTL())
	assert.NotEqual(t, c.keyPath("a"), c.keyPath("b"))
}

func TestCacheConcurrentWriters(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Set(moviesURL, entry{Body: []byte(movies)}))
		}()
	}
	wg.Wait()

	var out entry
	ok, err := c.Get(moviesURL, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, movies, string(out.Body))
}
