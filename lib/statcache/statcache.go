// Package statcache is a file-per-entry json cache for scraped stats.
// Entries are keyed by the operation that produced them and expire a
// fixed duration after creation. Expired and corrupt entries read as
// misses, they are only removed by Cleanup.
package statcache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("apastats.lib.statcache")

var ErrNotFound = fmt.Errorf("cache entry not found")

const DefaultTTL = time.Hour * 12

const (
	KindPlayer = "player"
	KindTeam   = "team"
)

// Key identifies one cache entry. Two extractions with the same kind,
// identifier, league and expansion always map to the same entry.
type Key struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier"`
	League     string `json:"league,omitempty"`
	Expanded   bool   `json:"expanded,omitempty"`
}

func (k Key) String() string {
	parts := []string{k.Kind, k.Identifier}
	if k.League != "" {
		parts = append(parts, k.League)
	}
	if k.Expanded {
		parts = append(parts, "expanded")
	}
	return strings.Join(parts, ":")
}

// Digest returns the hex md5 of the key string, used as the filename.
func (k Key) Digest() string {
	sum := md5.Sum([]byte(k.String()))
	return hex.EncodeToString(sum[:])
}

// Entry is the on-disk envelope. The key is stored alongside the
// payload so stats and selective clearing can filter on real metadata
// instead of guessing from digests.
type Entry struct {
	Key       Key             `json:"key"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

type Stats struct {
	Total          int
	Valid          int
	Expired        int
	Corrupt        int
	Expanded       int
	Unexpanded     int
	TotalSizeBytes int64
	PerKind        map[string]int
	Oldest         time.Time
	Newest         time.Time
	Directory      string
}

// Filter selects entries for Clear. Kind and Identifier are required,
// League narrows the match when set and ExpandedOnly keeps the
// unexpanded sibling alive.
type Filter struct {
	Kind         string
	Identifier   string
	League       string
	ExpandedOnly bool
}

func (f Filter) matches(k Key) bool {
	if k.Kind != f.Kind || k.Identifier != f.Identifier {
		return false
	}
	if f.League != "" && k.League != f.League {
		return false
	}
	if f.ExpandedOnly && !k.Expanded {
		return false
	}
	return true
}

// Store is what the rest of the system sees of the cache. FileStore is
// the real thing, MemStore backs tests.
type Store interface {
	Get(ctx context.Context, key Key) (Entry, error)
	Put(ctx context.Context, key Key, payload any) error
	Stats(ctx context.Context) (Stats, error)
	Clear(ctx context.Context, filter Filter) (int, error)
	ClearAll(ctx context.Context) (int, error)
	Cleanup(ctx context.Context) (int, error)
}

var _ Store = FileStore{}

// FileStore keeps one json file per entry under a single directory.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func NewFileStore(dir string) (FileStore, error) {
	return NewFileStoreTTL(dir, DefaultTTL)
}

func NewFileStoreTTL(dir string, ttl time.Duration) (FileStore, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return FileStore{}, err
	}
	return FileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (s FileStore) Dir() string { return s.dir }

func (s FileStore) path(key Key) string {
	return filepath.Join(s.dir, key.Digest()+".json")
}

func (s FileStore) expired(e Entry) bool {
	return s.now().Sub(e.CreatedAt) >= s.ttl
}

// Get returns the entry for key. Missing, expired and corrupt entries
// all come back as ErrNotFound, expired files stay on disk so Stats can
// still count them.
func (s FileStore) Get(ctx context.Context, key Key) (Entry, error) {
	_, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("key", key.String()))

	path := s.path(key)
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	err = json.Unmarshal(contents, &entry)
	if err != nil {
		slog.Warn("corrupt cache entry", "file", path, "err", err)
		span.AddEvent("corrupt entry")
		return Entry{}, ErrNotFound
	}
	if s.expired(entry) {
		slog.Debug("cache entry expired", "key", key.String(), "created_at", entry.CreatedAt)
		span.AddEvent("expired entry")
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Put marshals payload and overwrites any previous entry for key. The
// write goes through a temp file so a crash never leaves a half-written
// entry behind, and Get hands the payload bytes back exactly as they
// were stored here.
func (s FileStore) Put(ctx context.Context, key Key, payload any) error {
	_, span := tracer.Start(ctx, "Put")
	defer span.End()
	span.SetAttributes(attribute.String("key", key.String()))

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	contents, err := json.Marshal(Entry{
		Key:       key,
		CreatedAt: s.now(),
		Payload:   raw,
	})
	if err != nil {
		return err
	}

	path := s.path(key)
	tmp := path + ".tmp"
	err = os.WriteFile(tmp, contents, 0o644)
	if err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s FileStore) entryFiles() ([]string, error) {
	return filepath.Glob(filepath.Join(s.dir, "*.json"))
}

// Stats walks the cache directory and reports entry counts by
// validity, expansion and kind.
func (s FileStore) Stats(ctx context.Context) (Stats, error) {
	_, span := tracer.Start(ctx, "Stats")
	defer span.End()

	out := Stats{
		Directory: s.dir,
		PerKind:   map[string]int{},
	}

	files, err := s.entryFiles()
	if err != nil {
		return out, err
	}
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		out.Total++
		out.TotalSizeBytes += info.Size()

		contents, err := os.ReadFile(path)
		if err != nil {
			out.Corrupt++
			continue
		}
		var entry Entry
		err = json.Unmarshal(contents, &entry)
		if err != nil {
			out.Corrupt++
			continue
		}

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

// Clear deletes every entry matching the filter and returns how many
// were removed. Matching reads the stored key, so entries for the same
// identifier under a different league survive.
func (s FileStore) Clear(ctx context.Context, filter Filter) (int, error) {
	_, span := tracer.Start(ctx, "Clear")
	defer span.End()

	files, err := s.entryFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range files {
		contents, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry Entry
		err = json.Unmarshal(contents, &entry)
		if err != nil {
			// corrupt files belong to Cleanup
			continue
		}
		if !filter.matches(entry.Key) {
			continue
		}
		err = os.Remove(path)
		if err != nil {
			return removed, err
		}
		removed++
	}
	span.SetAttributes(attribute.Int("removed", removed))
	return removed, nil
}

// ClearAll deletes every entry and returns how many were removed.
func (s FileStore) ClearAll(ctx context.Context) (int, error) {
	_, span := tracer.Start(ctx, "ClearAll")
	defer span.End()

	files, err := s.entryFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range files {
		err = os.Remove(path)
		if err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Cleanup deletes expired and corrupt entries and returns how many
// were removed.
func (s FileStore) Cleanup(ctx context.Context) (int, error) {
	_, span := tracer.Start(ctx, "Cleanup")
	defer span.End()

	files, err := s.entryFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range files {
		remove := false

		contents, err := os.ReadFile(path)
		if err != nil {
			remove = true
		} else {
			var entry Entry
			err = json.Unmarshal(contents, &entry)
			remove = err != nil || s.expired(entry)
		}
		if !remove {
			continue
		}
		err = os.Remove(path)
		if err != nil {
			return removed, err
		}
		removed++
	}
	span.SetAttributes(attribute.Int("removed", removed))
	return removed, nil
}
