package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SchemaVersion tags every cache entry. Entries written by an older
// schema are treated as absent so a format change never feeds stale
// shapes into the scorers.
const SchemaVersion = 2

// ErrMiss is returned when a key is absent, unreadable, or written by
// a different schema version.
var ErrMiss = errors.New("cache miss")

// Entry wraps a cached payload with the metadata the freshness policy
// needs.
type Entry struct {
	SchemaVersion int             `json:"schema_version"`
	Key           string          `json:"key"`
	FetchedAt     time.Time       `json:"fetched_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Store is the persistence behind the cache. Implementations must be
// safe for concurrent use by the pipeline workers.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, key string) error
}

// FileStore keeps one JSON file per key under a directory. Writes go
// through a temp file and rename so a crash never leaves a torn entry.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	// Keys look like "AAPL:price_series"; colon is unfriendly on some
	// filesystems.
	safe := strings.ReplaceAll(key, ":", "_")
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) Get(_ context.Context, key string) (Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, ErrMiss
		}
		return Entry{}, fmt.Errorf("read cache entry %s: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Corrupt entry reads as a miss; the fetch will rewrite it.
		return Entry{}, ErrMiss
	}
	if e.SchemaVersion != SchemaVersion {
		return Entry{}, ErrMiss
	}
	return e, nil
}

func (s *FileStore) Put(_ context.Context, e Entry) error {
	e.SchemaVersion = SchemaVersion
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry %s: %w", e.Key, err)
	}

	final := s.path(e.Key)
	tmp, err := os.CreateTemp(s.dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache entry %s: %w", e.Key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit cache entry %s: %w", e.Key, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
