package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Storer is a read-mostly keyed collection of definitions.
type Storer[T ValidatingSpec] interface {
	Get(id string) (T, bool)
	GetAll() map[string]T
}

// FileStore loads every JSON asset below a directory. Reload swaps the
// whole record set only after every file loaded and validated.
type FileStore[T ValidatingSpec] struct {
	path string

	mu      sync.RWMutex
	records map[string]T
}

func NewFileStore[T ValidatingSpec](path string) (*FileStore[T], error) {
	s := &FileStore[T]{
		path:    path,
		records: map[string]T{},
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload rereads the directory. On error the previous records are kept.
func (s *FileStore[T]) Reload() error {
	records := map[string]T{}

	err := filepath.WalkDir(s.path, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		asset, err := loadAsset[T](path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}

		if err := asset.Validate(); err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(path), err)
		}

		if _, dup := records[asset.Id()]; dup {
			return fmt.Errorf("duplicate key detected: %s", asset.Id())
		}

		records[asset.Id()] = asset.Spec
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	slog.Debug("assets loaded", "path", s.path, "count", len(records))
	return nil
}

func (s *FileStore[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[id]
	return val, ok
}

func (s *FileStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := make(map[string]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}
	return vals
}

// Ids returns every loaded id in sorted order.
func (s *FileStore[T]) Ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func loadAsset[T ValidatingSpec](path string) (*Asset[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	asset := &Asset[T]{}
	if err := json.Unmarshal(data, asset); err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}

	return asset, nil
}
