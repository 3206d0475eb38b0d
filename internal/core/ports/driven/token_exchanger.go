package driven

import (
	"context"

	"github.com/custodia-labs/droidgate/internal/core/domain"
)

// TokenExchanger performs the network round trips of the WorkOS OAuth
// flow. Implementations own their HTTP clients and timeouts; core services
// never hold the store lock while calling these methods.
type TokenExchanger interface {
	// Refresh exchanges a refresh token for a new access token.
	// organizationID may be empty. Failures carry the upstream HTTP
	// status and body where available.
	Refresh(ctx context.Context, refreshToken, organizationID string) (*domain.TokenRefreshResult, error)

	// FetchOrgIDs returns the organization ids visible to an access token.
	FetchOrgIDs(ctx context.Context, accessToken string) ([]string, error)

	// ValidateAccessToken probes whether an access token is still
	// accepted upstream. Any transport or HTTP failure reads as invalid.
	ValidateAccessToken(ctx context.Context, accessToken string) bool
}
