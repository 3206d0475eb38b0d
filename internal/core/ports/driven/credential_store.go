package driven

import (
	"context"

	"github.com/custodia-labs/droidgate/internal/core/domain"
)

// CredentialStore is the sole source of truth for credential state.
//
// Every operation is atomic with respect to the store's internal lock.
// Implementations must never hold that lock across a network call;
// callers that need a network round trip read a snapshot first and apply
// the result with Update afterwards.
type CredentialStore interface {
	// Save inserts or replaces a record under its ID.
	Save(ctx context.Context, rec domain.CredentialRecord) error

	// Get returns a copy of the record, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.CredentialRecord, error)

	// List returns copies of all records in insertion order. The fixed
	// order makes first-healthy selection deterministic.
	List(ctx context.Context) ([]domain.CredentialRecord, error)

	// Update runs fn on the stored record under the write lock and keeps
	// the mutated value. If fn returns an error the record is left
	// unchanged. Returns domain.ErrNotFound for unknown ids.
	Update(ctx context.Context, id string, fn func(*domain.CredentialRecord) error) error

	// Delete removes a record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
