// Package auth bridges the credential service to x/oauth2 consumers.
package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/droidgate/internal/core/domain"
	"github.com/custodia-labs/droidgate/internal/core/ports/driving"
)

// TokenSourceAdapter adapts the credential service to oauth2.TokenSource.
// This allows HTTP clients built on x/oauth2 to draw bearer tokens from
// credential acquisition instead of managing their own token state.
type TokenSourceAdapter struct {
	credentials driving.CredentialService
	model       string
	ctx         context.Context
}

// NewTokenSource creates an oauth2.TokenSource that acquires a credential
// for the given model on every Token call. Acquisition already prefers
// healthy credentials, so no caching happens here; wrap the result in
// oauth2.ReuseTokenSource for call sites that need it.
func NewTokenSource(ctx context.Context, credentials driving.CredentialService, model string) oauth2.TokenSource {
	return &TokenSourceAdapter{
		credentials: credentials,
		model:       model,
		ctx:         ctx,
	}
}

// Token implements oauth2.TokenSource.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	acquired, err := t.credentials.Acquire(t.ctx, t.model)
	if err != nil {
		return nil, err
	}

	bearer, ok := strings.CutPrefix(acquired.Headers["Authorization"], "Bearer ")
	if !ok || bearer == "" {
		return nil, fmt.Errorf("%w: credential %s has no bearer token", domain.ErrMissingAccessToken, acquired.ID)
	}

	return &oauth2.Token{
		AccessToken: bearer,
		TokenType:   domain.DefaultTokenType,
	}, nil
}
