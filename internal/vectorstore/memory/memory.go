// Package memory provides a non-persistent vector store backend. It is the
// backend of choice for tests and throwaway sessions.
package memory

import (
	"sort"
	"sync"

	"securequery/internal/apperr"
	"securequery/internal/domain"
	"securequery/internal/vectorstore"
)

type entry struct {
	id       string
	vector   []float64
	document string
	metadata map[string]string
}

// Store keeps entries in memory and searches them by brute force.
type Store struct {
	mu      sync.RWMutex
	entries []entry
	byID    map[string]int
}

func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

func (s *Store) Add(records []domain.LogRecord, vectors [][]float64) error {
	if err := vectorstore.ValidateBatch(records, vectors); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range records {
		e := entry{
			id:       rec.ID,
			vector:   vectors[i],
			document: rec.ToText(),
			metadata: rec.IndexMetadata(),
		}
		if idx, ok := s.byID[rec.ID]; ok {
			s.entries[idx] = e
			continue
		}
		s.byID[rec.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *Store) Search(vector []float64, k int) ([]domain.Match, error) {
	if err := vectorstore.ValidateK(k); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]domain.Match, 0, len(s.entries))
	for _, e := range s.entries {
		if len(e.vector) != len(vector) {
			return nil, apperr.Newf(apperr.CodeValidation,
				"stored vectors have dimension %d, query has %d; the index was built with a different embedding backend",
				len(e.vector), len(vector))
		}
		matches = append(matches, domain.Match{
			ID:       e.id,
			Document: e.document,
			Metadata: e.metadata,
			Distance: vectorstore.CosineDistance(e.vector, vector),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = make(map[string]int)
	return nil
}

func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *Store) Close() error { return nil }
