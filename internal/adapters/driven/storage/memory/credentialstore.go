// Package memory provides the in-memory implementation of the credential
// store. The process owns the credential set for its lifetime; durable
// storage, if desired, is an external concern that loads and saves through
// the store's public operations.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/droidgate/internal/core/domain"
	"github.com/custodia-labs/droidgate/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is an in-memory implementation of driven.CredentialStore.
//
// A single reader/writer lock guards the mapping: any number of readers
// proceed together, a writer excludes everyone. Mutations happen inside
// Update so read-modify-write cycles cannot interleave. The lock is never
// held across a network call.
//
// An insertion-order index keeps List deterministic; map iteration order
// would randomise first-healthy credential selection.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.CredentialRecord
	order []string
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[string]domain.CredentialRecord),
	}
}

// Save inserts or replaces a record under its ID.
func (s *CredentialStore) Save(_ context.Context, rec domain.CredentialRecord) error {
	if rec.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.creds[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.creds[rec.ID] = rec.Clone()
	return nil
}

// Get retrieves a copy of a record by ID.
func (s *CredentialStore) Get(_ context.Context, id string) (*domain.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.creds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := rec.Clone()
	return &out, nil
}

// List returns copies of all records in insertion order.
func (s *CredentialStore) List(_ context.Context) ([]domain.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.CredentialRecord, 0, len(s.order))
	for _, id := range s.order {
		rec := s.creds[id]
		result = append(result, rec.Clone())
	}
	return result, nil
}

// Update runs fn on the stored record under the write lock. The mutated
// value is kept only if fn returns nil.
func (s *CredentialStore) Update(_ context.Context, id string, fn func(*domain.CredentialRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.creds[id]
	if !ok {
		return domain.ErrNotFound
	}

	updated := rec.Clone()
	if err := fn(&updated); err != nil {
		return err
	}
	updated.ID = id // the identifier is not mutable through Update
	s.creds[id] = updated
	return nil
}

// Delete removes a record. Deleting an unknown id is not an error.
func (s *CredentialStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[id]; !ok {
		return nil
	}
	delete(s.creds, id)
	for i, ordered := range s.order {
		if ordered == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
