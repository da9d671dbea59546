// Package memory is an in-process document store used for local development
// and tests. Documents can be seeded from JSON files in a data directory.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"iuran/internal/docstore"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]docstore.Document
}

var _ docstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{collections: make(map[string]map[string]docstore.Document)}
}

// NewFromFiles seeds a store from base/<collection>__<id>.json files.
// Files that fail to parse are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	entries, err := os.ReadDir(base)
	if err != nil {
		return s
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(name, ".json"), "__", 2)
		if len(parts) != 2 {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(base, name))
		if err != nil {
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		s.seed(parts[0], parts[1], doc)
	}
	return s
}

func (s *Store) seed(collection, id string, doc map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[collection]
	if col == nil {
		col = make(map[string]docstore.Document)
		s.collections[collection] = col
	}
	col[id] = docstore.Clone(docstore.NormalizeNumbers(doc)).(map[string]any)
}

func (s *Store) Get(_ context.Context, collection, id string) (docstore.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, false, nil
	}
	return docstore.Clone(map[string]any(doc)).(map[string]any), true, nil
}

func (s *Store) SetMerge(_ context.Context, collection, id string, partial docstore.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[collection]
	if col == nil {
		col = make(map[string]docstore.Document)
		s.collections[collection] = col
	}
	col[id] = docstore.Merge(col[id], partial)
	return nil
}
