package cache

import (
	"sync"
	"time"

	"github.com/aulanota/insight/pkg/logx"
)

// Store is an in-memory key/value cache with tag-based bulk invalidation.
// Entries are created on analysis cache misses, tagged with the operation and
// subject identifiers they were computed from, and destroyed by tag
// invalidation, full flush, or TTL expiry (enforced by the caller comparing
// Entry.CreatedAt against the configured TTL). The store itself performs no
// network or disk I/O.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	tags    map[string]map[string]struct{} // tag -> set of keys

	stats  Stats
	logger *logx.Logger
}

// Entry is a single cached value with its tag bookkeeping
type Entry struct {
	Key       string    `json:"key"`
	Value     interface{} `json:"-"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats tracks cache effectiveness counters
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Entries       int   `json:"entries"`
	Invalidations int64 `json:"invalidations"`
}

// NewStore creates an empty cache store
func NewStore(logger *logx.Logger) *Store {
	return &Store{
		entries: make(map[string]*Entry),
		tags:    make(map[string]map[string]struct{}),
		logger:  logger,
	}
}

// Get returns the cached value for key, if present
func (s *Store) Get(key string) (interface{}, bool) {
	entry, ok := s.GetEntry(key)
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// GetEntry returns the full cache entry for key, if present. Callers that
// enforce a TTL read CreatedAt from the entry and treat stale entries as
// misses (deleting them via Delete).
func (s *Store) GetEntry(key string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		s.stats.Misses++
		return nil, false
	}
	s.stats.Hits++
	return entry, true
}

// Has reports whether key is present, without touching hit/miss counters
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Set stores value under key, overwriting any existing entry, and associates
// it with the given tags. Re-tagging with a duplicate tag is idempotent.
func (s *Store) Set(key string, value interface{}, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop the old entry's tag references before overwriting
	if old, ok := s.entries[key]; ok {
		s.removeFromTags(old)
	}

	entry := &Entry{
		Key:       key,
		Value:     value,
		Tags:      dedupe(tags),
		CreatedAt: time.Now(),
	}
	s.entries[key] = entry

	for _, tag := range entry.Tags {
		keys, ok := s.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}

	if s.logger != nil {
		s.logger.Debug("Cache entry stored", "key", key, "tags", len(entry.Tags))
	}
}

// Delete removes a single entry and all its tag references
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false
	}
	s.removeFromTags(entry)
	delete(s.entries, key)
	return true
}

// InvalidateByTag removes every entry currently tagged with tag and returns
// the number removed. Entries are also removed from every other tag they
// held, so no dangling references remain.
func (s *Store) InvalidateByTag(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.tags[tag]
	if !ok {
		return 0
	}

	removed := 0
	for key := range keys {
		if entry, ok := s.entries[key]; ok {
			s.removeFromTags(entry)
			delete(s.entries, key)
			removed++
		}
	}
	delete(s.tags, tag)
	s.stats.Invalidations += int64(removed)

	if s.logger != nil {
		s.logger.Debug("Cache tag invalidated", "tag", tag, "removed", removed)
	}
	return removed
}

// Flush removes every entry and returns the number removed
func (s *Store) Flush() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)
	s.entries = make(map[string]*Entry)
	s.tags = make(map[string]map[string]struct{})
	s.stats.Invalidations += int64(removed)

	if s.logger != nil {
		s.logger.Debug("Cache flushed", "removed", removed)
	}
	return removed
}

// Len returns the current number of entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns a snapshot of cache counters
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.Entries = len(s.entries)
	return stats
}

// removeFromTags strips an entry from every tag index it belongs to.
// Caller must hold the write lock.
func (s *Store) removeFromTags(entry *Entry) {
	for _, tag := range entry.Tags {
		if keys, ok := s.tags[tag]; ok {
			delete(keys, entry.Key)
			if len(keys) == 0 {
				delete(s.tags, tag)
			}
		}
	}
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
