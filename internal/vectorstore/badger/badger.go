// Package badger provides the default vector store backend: a BadgerHold
// database at a configured path, so the index survives process restarts. A
// fresh path implies an empty collection.
package badger

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/timshannon/badgerhold/v4"

	"securequery/internal/apperr"
	"securequery/internal/domain"
	"securequery/internal/vectorstore"
)

// entryRecord is the persisted shape of one index entry.
type entryRecord struct {
	ID       string `badgerhold:"key"`
	Vector   []float64
	Document string
	Metadata map[string]string
}

// Store is an on-disk vector store. Mutations are serialized with a mutex so
// concurrent callers cannot interleave Add and Clear.
type Store struct {
	mu    sync.RWMutex
	store *badgerhold.Store
}

// Open opens (or creates) the collection directory under path.
func Open(path, collection string) (*Store, error) {
	dir := filepath.Join(path, collection)
	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil
	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %s: %w", dir, err)
	}
	return &Store{store: store}, nil
}

func (s *Store) Add(records []domain.LogRecord, vectors [][]float64) error {
	if err := vectorstore.ValidateBatch(records, vectors); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range records {
		entry := entryRecord{
			ID:       rec.ID,
			Vector:   vectors[i],
			Document: rec.ToText(),
			Metadata: rec.IndexMetadata(),
		}
		if err := s.store.Upsert(entry.ID, &entry); err != nil {
			return fmt.Errorf("storing entry %s: %w", entry.ID, err)
		}
	}
	return nil
}

func (s *Store) Search(vector []float64, k int) ([]domain.Match, error) {
	if err := vectorstore.ValidateK(k); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []entryRecord
	if err := s.store.Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("scanning vector store: %w", err)
	}
	matches := make([]domain.Match, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != len(vector) {
			return nil, apperr.Newf(apperr.CodeValidation,
				"stored vectors have dimension %d, query has %d; the index was built with a different embedding backend",
				len(e.Vector), len(vector))
		}
		matches = append(matches, domain.Match{
			ID:       e.ID,
			Document: e.Document,
			Metadata: e.Metadata,
			Distance: vectorstore.CosineDistance(e.Vector, vector),
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
	if err := s.store.DeleteMatching(&entryRecord{}, nil); err != nil {
		return fmt.Errorf("clearing vector store: %w", err)
	}
	return nil
}

func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count, err := s.store.Count(&entryRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return int(count), nil
}

func (s *Store) Close() error {
	return s.store.Close()
}
