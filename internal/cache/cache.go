// Package cache implements a TTL cache persisted as a flat JSON snapshot.
//
// Persistence is best-effort: I/O failures are logged and swallowed so a
// broken cache file never aborts the operation that consulted it.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Entry is a single cached value with its lifetime, in Unix seconds.
type Entry struct {
	Value   json.RawMessage `json:"value"`
	Created int64           `json:"created"`
	Expires int64           `json:"expires"`
}

// Stats describes the current state of the store.
type Stats struct {
	TotalEntries   int   `json:"total_entries"`
	ActiveEntries  int   `json:"active_entries"`
	ExpiredEntries int   `json:"expired_entries"`
	SizeBytes      int64 `json:"size_bytes"`
}

// Store is a key/value cache with per-entry TTLs, written back to its
// snapshot file after every mutation. Mutations are serialized internally.
type Store struct {
	mu         sync.Mutex
	path       string
	enabled    bool
	defaultTTL time.Duration
	entries    map[string]Entry
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures the store.
type Option func(*Store)

// WithDefaultTTL sets the TTL used when Set is called with a zero TTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.defaultTTL = ttl
	}
}

// WithLogger sets the logger for load/persist warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithEnabled toggles caching. When disabled, Get always misses and Set is
// a no-op.
func WithEnabled(enabled bool) Option {
	return func(s *Store) {
		s.enabled = enabled
	}
}

// Open loads the snapshot at path, purging any entries that have already
// expired. A missing or malformed snapshot starts the store empty; Open
// never fails.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		enabled:    true,
		defaultTTL: 5 * time.Minute,
		entries:    make(map[string]Entry),
		log:        zerolog.Nop(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.load()
	return s
}

// load reads the snapshot file and drops expired entries. A purge that
// removed anything is persisted right away.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("could not load cache")
		}
		return
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("could not parse cache, starting empty")
		s.entries = make(map[string]Entry)
		return
	}

	if s.entries == nil {
		s.entries = make(map[string]Entry)
	}

	now := s.now().Unix()
	purged := 0
	for key, entry := range s.entries {
		if now >= entry.Expires {
			delete(s.entries, key)
			purged++
		}
	}
	if purged > 0 {
		s.persist()
	}
}

// Get returns the raw value stored for key if it has not expired. An expired
// entry is removed and the removal persisted before reporting a miss.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	if !s.enabled {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	if s.now().Unix() >= entry.Expires {
		delete(s.entries, key)
		s.persist()
		return nil, false
	}

	return entry.Value, true
}

// Set stores value under key with the given TTL, overwriting any existing
// entry. A zero TTL uses the store's default. Marshal and persist failures
// are logged and swallowed.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if !s.enabled {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("could not marshal cache value")
		return
	}

	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = Entry{
		Value:   raw,
		Created: now.Unix(),
		Expires: now.Add(ttl).Unix(),
	}
	s.persist()
}

// Delete removes key from the store. Does nothing if the key is absent.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	s.persist()
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	s.persist()
}

// Stats reports entry counts and the on-disk snapshot size in bytes.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	stats := Stats{TotalEntries: len(s.entries)}
	for _, entry := range s.entries {
		if now < entry.Expires {
			stats.ActiveEntries++
		}
	}
	stats.ExpiredEntries = stats.TotalEntries - stats.ActiveEntries

	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}

	return stats
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// persist rewrites the whole snapshot file. Callers must hold s.mu.
func (s *Store) persist() {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		s.log.Warn().Err(err).Msg("could not marshal cache")
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("could not create cache directory")
		return
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("could not save cache")
	}
}
