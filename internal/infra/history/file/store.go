// Package file persists the analysis history the way the app's durable
// storage is specified: one named key (a JSON file) holding the full array of
// records, most-recent-first, with a process-wide in-memory cache mirroring
// it.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bryanwahyu/chartsight/internal/domain/analysis"
)

// Store implements analysis.Repository over a single JSON document.
//
// Every write is a read-modify-write of the whole collection, so writes are
// serialized under one mutex; two analyses finishing close together cannot
// interleave-corrupt the file or lose each other's record.
//
// Durability guarantee is at-most-once-durable, at-least-once-visible: the
// cache is updated before the file write, so a record whose durable write
// failed stays visible for the rest of the process while the caller is told
// the save did not stick.
type Store struct {
	mu    sync.Mutex
	path  string
	cache []*analysis.Analysis
}

// Open loads the history document at path, creating parent directories as
// needed. A missing file is an empty history, not an error.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			return nil, mkErr
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.cache); err != nil {
		return nil, fmt.Errorf("history file %s is corrupt: %w", path, err)
	}
	for _, a := range s.cache {
		if a.DetailedAnalysis == nil {
			a.DetailedAnalysis = []analysis.Section{}
		}
	}
	return s, nil
}

// Save inserts the record at the head of recency order. Records are written
// once and never mutated in place; an id that already exists is rejected.
func (s *Store) Save(ctx context.Context, a *analysis.Analysis) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.cache {
		if existing.ID == a.ID {
			return fmt.Errorf("%w: %s", analysis.ErrDuplicateID, a.ID)
		}
	}

	next := make([]*analysis.Analysis, 0, len(s.cache)+1)
	next = append(next, a.Clone())
	next = append(next, s.cache...)
	s.cache = next

	return s.flushLocked()
}

// History returns all records ordered by createdAt descending. Completion
// order of concurrent writes does not leak into read order.
func (s *Store) History(ctx context.Context) ([]*analysis.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*analysis.Analysis, len(s.cache))
	for i, a := range s.cache {
		out[i] = a.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) Get(ctx context.Context, id analysis.ID) (*analysis.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.cache {
		if a.ID == id {
			return a.Clone(), nil
		}
	}
	return nil, analysis.ErrNotFound
}

// Clear empties the user-generated history. Sample data lives above this
// layer and is unaffected.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = nil
	return s.flushLocked()
}

// flushLocked writes the whole collection atomically (tmp file + rename).
// Callers must hold s.mu.
func (s *Store) flushLocked() error {
	data, err := json.Marshal(s.cache)
	if err != nil {
		return err
	}
	if s.cache == nil {
		data = []byte("[]")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
