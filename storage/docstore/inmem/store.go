// Package inmemstore is an in-memory document store standing in for the live
// store during local development and tests, the way the emulator does.
package inmemstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core/document"
	"github.com/darasahq/darasa/storage/docstore"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]document.Record
}

var _ docstore.Store = (*Store)(nil)

func Open() *Store {
	return &Store{collections: make(map[string]map[string]document.Record)}
}

func (s *Store) Get(_ context.Context, collection, id string) (document.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, docstore.NotFoundErr
	}
	rec, ok := col[id]
	if !ok {
		return nil, docstore.NotFoundErr
	}
	// deep copy so nested maps cannot alias the stored record
	return rec.DeepClone(), nil
}

func (s *Store) Set(_ context.Context, collection, id string, rec document.Record) error {
	if err := docstore.CheckWriteRules(rec); err != nil {
		return err
	}
	// commit-time assignment, as the live store does server-side
	rec = docstore.ResolveServerTimestamps(rec, document.NowFunc())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]document.Record)
	}
	s.collections[collection][id] = rec.DeepClone()
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, rec document.Record) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, collection, id, rec); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[collection]; ok {
		delete(col, id)
	}
	return nil
}

func (s *Store) QueryAll(_ context.Context, collection string) (map[string]document.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	out := make(map[string]document.Record, len(col))
	for id, rec := range col {
		out[id] = rec.DeepClone()
	}
	return out, nil
}
