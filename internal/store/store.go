// Package store persists the four platform collections (users, events,
// preguntas, logs) as independent pretty-printed JSON array files under a
// single base directory. Every mutation is a whole-file read-modify-write
// serialized behind a per-collection mutex, and writes go through a temp
// file plus rename so a crash mid-write never corrupts the backing file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/plataforma-eventos/server/internal/metrics"
)

const (
	usersFile     = "users.json"
	eventsFile    = "events.json"
	preguntasFile = "preguntas.json"
	logsFile      = "logs.json"
)

// ErrEventFinalized is returned by UpdateEvent and DeleteEvent when the
// target event has been finalized. The invariant lives here, not in the
// handlers, so no caller can bypass it.
var ErrEventFinalized = errors.New("event is finalized")

// Store owns the data directory. Construct one per process (or per test,
// pointed at a temp dir); there is no package-level state.
type Store struct {
	dir string

	usersMu     sync.Mutex
	eventsMu    sync.Mutex
	preguntasMu sync.Mutex
	logsMu      sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readAll loads a collection, lazily creating the backing file as an empty
// array when absent. Invalid content is an error for the caller; there is
// no recovery path.
func readAll[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeAll(path, []T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// writeAll replaces the whole collection. The temp-file-and-rename swap
// keeps the visible file either the old or the new content, never a torn
// mix of both.
func writeAll[T any](path string, records []T) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func observe(collection, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.StoreOperations.WithLabelValues(collection, op, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
}
