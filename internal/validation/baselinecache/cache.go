// Package baselinecache stores computed baseline metrics keyed by a
// content hash of their inputs. Baseline computation is deterministic
// given (universe snapshot, period, strategy kind), so entries never go
// stale on their own; a data refresh changes the universe fingerprint and
// with it the key, which is the invalidation rule.
package baselinecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/sawpanic/stratvalid/internal/returns"
)

// Entry is one cached baseline computation.
type Entry struct {
	Metrics  returns.Metrics `json:"metrics"`
	CachedAt time.Time       `json:"cached_at"`
}

// Store is the key→entry cache behind the baseline comparator. Safe for
// concurrent reads; at most one concurrent write per key is expected, and
// stale-but-correct reads during a refill are acceptable because entries
// are deterministic.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
}

// Key derives the cache key as a content hash of the baseline inputs.
func Key(universeFingerprint string, periodStart, periodEnd time.Time, kind string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%s",
		universeFingerprint, periodStart.UnixNano(), periodEnd.UnixNano(), kind)
	return "baseline:" + hex.EncodeToString(h.Sum(nil)[:16])
}

// MemoryStore is the in-process cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

// Len reports the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
