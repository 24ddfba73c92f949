package statcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps entries in memory with the same miss semantics as
// FileStore: expired entries read as misses, only Cleanup drops them.
type MemStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemStore() *MemStore {
	return NewMemStoreTTL(DefaultTTL)
}

func NewMemStoreTTL(ttl time.Duration) *MemStore {
	return &MemStore{
		entries: map[string]Entry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemStore) expired(e Entry) bool {
	return s.now().Sub(e.CreatedAt) >= s.ttl
}

func (s *MemStore) Get(ctx context.Context, key Key) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key.Digest()]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if s.expired(entry) {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (s *MemStore) Put(ctx context.Context, key Key, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.Digest()] = Entry{
		Key:       key,
		CreatedAt: s.now(),
		Payload:   raw,
	}
	return nil
}

func (s *MemStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Stats{PerKind: map[string]int{}}
	for _, entry := range s.entries {
		out.Total++
		out.TotalSizeBytes += int64(len(entry.Payload))

		if s.expired(entry) {
			out.Expired++
		} else {
			out.Valid++
		}
		if entry.Key.Expanded {
			out.Expanded++
		} else {
			out.Unexpanded++
		}
		out.PerKind[entry.Key.Kind]++

		if out.Oldest.IsZero() || entry.CreatedAt.Before(out.Oldest) {
			out.Oldest = entry.CreatedAt
		}
		if entry.CreatedAt.After(out.Newest) {
			out.Newest = entry.CreatedAt
		}
	}
	return out, nil
}

func (s *MemStore) Clear(ctx context.Context, filter Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for digest, entry := range s.entries {
		if filter.matches(entry.Key) {
			delete(s.entries, digest)
			removed++
		}
	}
	return removed, nil
}

func (s *MemStore) ClearAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)
	s.entries = map[string]Entry{}
	return removed, nil
}

func (s *MemStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for digest, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, digest)
			removed++
		}
	}
	return removed, nil
}
