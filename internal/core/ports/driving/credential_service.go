package driving

import (
	"context"

	"github.com/custodia-labs/droidgate/internal/core/domain"
)

// CredentialService is the credential lifecycle contract the rest of the
// gateway relies on: create stored credentials, check one out for an
// upstream call, report the outcome back, and keep OAuth tokens fresh.
type CredentialService interface {
	// Create validates the config, encrypts any plaintext API keys, and
	// stores a new credential. Returns the generated credential id.
	// Nothing is stored when validation fails.
	Create(ctx context.Context, authType string, cfg domain.CredentialConfig) (string, error)

	// Acquire selects a usable credential for the model and returns a
	// ready-to-use bundle of base URL and headers. The bundle carries a
	// plaintext bearer token and must not be retained beyond the single
	// call it authorizes.
	Acquire(ctx context.Context, model string) (*domain.AcquiredCredential, error)

	// Release records the outcome of one use. A success heals an
	// unhealthy credential; an error outcome flips it unhealthy only
	// when the outcome explicitly asks for it. Unknown ids are ignored.
	Release(ctx context.Context, id string, outcome domain.UsageOutcome) error

	// Validate reports whether a credential is healthy and fully
	// configured. Unknown ids report invalid rather than an error.
	Validate(ctx context.Context, id string) (*domain.ValidationResult, error)

	// Refresh exchanges the stored refresh token for new OAuth tokens and
	// applies the result to the record.
	Refresh(ctx context.Context, id string) (*domain.TokenRefreshResult, error)

	// RefreshWithRetry retries Refresh with exponential backoff, up to
	// maxAttempts, returning the first success or the last failure.
	RefreshWithRetry(ctx context.Context, id string, maxAttempts int) (*domain.TokenRefreshResult, error)
}
