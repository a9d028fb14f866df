package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	return Open(path, opts...)
}

func TestSetGetRoundTrip(t *testing.T) {
	s := testStore(t)

	s.Set("greeting", map[string]string{"hello": "world"}, time.Minute)

	raw, ok := s.Get("greeting")
	require.True(t, ok)
	assert.JSONEq(t, `{"hello":"world"}`, string(raw))
}

func TestGetMissingKey(t *testing.T) {
	s := testStore(t)

	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestExpiredEntryIsRemoved(t *testing.T) {
	s := testStore(t)

	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set("short", "value", time.Second)

	_, ok := s.Get("short")
	require.True(t, ok)

	current = current.Add(2 * time.Second)

	_, ok = s.Get("short")
	assert.False(t, ok)

	stats := s.Stats()
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestOverwriteResetsExpiry(t *testing.T) {
	s := testStore(t)

	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set("key", "old", time.Second)
	current = current.Add(900 * time.Millisecond)
	s.Set("key", "new", time.Minute)
	current = current.Add(2 * time.Second)

	raw, ok := s.Get("key")
	require.True(t, ok)
	assert.JSONEq(t, `"new"`, string(raw))
}

func TestPersistenceAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	s1 := Open(path)
	s1.Set("domains", []string{"example.test"}, time.Hour)

	s2 := Open(path)
	raw, ok := s2.Get("domains")
	require.True(t, ok)
	assert.JSONEq(t, `["example.test"]`, string(raw))
}

func TestOpenPurgesExpiredEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	s1 := Open(path)
	current := time.Now()
	s1.now = func() time.Time { return current }
	s1.Set("stale", "value", time.Second)
	s1.Set("fresh", "value", time.Hour)

	s2 := Open(path)
	s2.now = func() time.Time { return current.Add(time.Minute) }
	s2.load()

	_, ok := s2.Get("stale")
	assert.False(t, ok)
	_, ok = s2.Get("fresh")
	assert.True(t, ok)
}

func TestOpenWithCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s := Open(path)
	_, ok := s.Get("anything")
	assert.False(t, ok)

	// The store stays usable.
	s.Set("key", "value", time.Minute)
	_, ok = s.Get("key")
	assert.True(t, ok)
}

func TestDisabledStore(t *testing.T) {
	s := testStore(t, WithEnabled(false))

	s.Set("key", "value", time.Minute)
	_, ok := s.Get("key")
	assert.False(t, ok)
}

func TestDefaultTTL(t *testing.T) {
	s := testStore(t, WithDefaultTTL(time.Hour))

	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set("key", "value", 0)
	current = current.Add(30 * time.Minute)

	_, ok := s.Get("key")
	assert.True(t, ok)
}

func TestDeleteAndClear(t *testing.T) {
	s := testStore(t)

	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)

	s.Delete("a")
	_, ok := s.Get("a")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	s.Delete("a")

	s.Clear()
	_, ok = s.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Stats().TotalEntries)
}

func TestStats(t *testing.T) {
	s := testStore(t)

	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set("active", "v", time.Hour)
	s.Set("expired", "v", time.Second)
	current = current.Add(time.Minute)

	stats := s.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ActiveEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
	assert.Greater(t, stats.SizeBytes, int64(0))
}
