package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/droidgate/internal/adapters/driven/secrets"
	"github.com/custodia-labs/droidgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/droidgate/internal/adapters/driven/workos"
	"github.com/custodia-labs/droidgate/internal/core/domain"
)

func TestCredentialService_Refresh_AppliesResult(t *testing.T) {
	svc, store, exchanger := newTestService(t)
	ctx := context.Background()

	expiry := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	exchanger.result = &domain.TokenRefreshResult{
		AccessToken:    "at-new",
		RefreshToken:   "rt-new",
		ExpiresAt:      expiry,
		OrganizationID: "org-new",
		UserID:         "user-1",
		OwnerEmail:     "owner@example.com",
	}

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{
		AccessToken:    "at-old",
		RefreshToken:   "rt-old",
		OrganizationID: "org-old",
	})
	require.NoError(t, err)

	result, err := svc.Refresh(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "at-new", result.AccessToken)

	// The exchanger saw the stored refresh token and organization.
	assert.Equal(t, []string{"rt-old", "org-old"}, exchanger.lastArgs)

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "at-new", rec.AccessToken)
	assert.Equal(t, "rt-new", rec.RefreshToken)
	assert.Equal(t, expiry, rec.ExpiresAt)
	assert.Equal(t, "org-new", rec.OrganizationID)
	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, "owner@example.com", rec.OwnerEmail)
	assert.True(t, rec.IsHealthy)
	assert.Empty(t, rec.LastError)
	assert.WithinDuration(t, time.Now(), rec.LastRefresh, 5*time.Second)
}

func TestCredentialService_Refresh_PreservesUnrotatedRefreshToken(t *testing.T) {
	svc, store, exchanger := newTestService(t)
	ctx := context.Background()

	// Exchange response without a rotated refresh token or identity.
	exchanger.result = &domain.TokenRefreshResult{
		AccessToken: "at-new",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{
		RefreshToken:   "rt-keep",
		OrganizationID: "org-keep",
		UserID:         "user-keep",
		OwnerEmail:     "keep@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, id)
	require.NoError(t, err)

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "rt-keep", rec.RefreshToken)
	assert.Equal(t, "org-keep", rec.OrganizationID)
	assert.Equal(t, "user-keep", rec.UserID)
	assert.Equal(t, "keep@example.com", rec.OwnerEmail)
}

func TestCredentialService_Refresh_HealsUnhealthyRecord(t *testing.T) {
	svc, store, exchanger := newTestService(t)
	ctx := context.Background()

	exchanger.result = &domain.TokenRefreshResult{AccessToken: "at-new"}

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{RefreshToken: "rt-1"})
	require.NoError(t, err)
	require.NoError(t, svc.Release(ctx, id, domain.UsageOutcome{
		Error: &domain.UsageError{Message: "stale token", MarkUnhealthy: true},
	}))

	_, err = svc.Refresh(ctx, id)
	require.NoError(t, err)

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.IsHealthy)
	assert.Empty(t, rec.LastError)
}

func TestCredentialService_Refresh_UnknownID(t *testing.T) {
	svc, _, exchanger := newTestService(t)

	_, err := svc.Refresh(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, exchanger.calls)
}

func TestCredentialService_Refresh_APIKeyNotSupported(t *testing.T) {
	svc, _, exchanger := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "api_key", domain.CredentialConfig{APIKeys: []string{"sk-1"}})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, id)
	require.ErrorIs(t, err, domain.ErrRefreshNotSupported)

	// Validation failures never reach the network.
	assert.Zero(t, exchanger.calls)
}

func TestCredentialService_Refresh_MissingRefreshToken(t *testing.T) {
	svc, _, exchanger := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{AccessToken: "at-only"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, id)
	require.ErrorIs(t, err, domain.ErrMissingRefreshToken)
	assert.Zero(t, exchanger.calls)
}

func TestCredentialService_Refresh_ExchangeFailure(t *testing.T) {
	svc, store, exchanger := newTestService(t)
	ctx := context.Background()

	exchanger.err = &workos.HTTPError{StatusCode: 401, Body: "invalid_grant"}

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{
		AccessToken:  "at-old",
		RefreshToken: "rt-old",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, id)
	require.ErrorIs(t, err, domain.ErrTokenRefreshFailed)

	var httpErr *workos.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 401, httpErr.StatusCode)

	// The record keeps its previous tokens.
	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "at-old", rec.AccessToken)
	assert.Equal(t, "rt-old", rec.RefreshToken)
}

func TestCredentialService_RefreshWithRetry_SucceedsAfterFailures(t *testing.T) {
	store := memory.NewCredentialStore()
	exchanger := &flakyExchanger{failures: 2}
	svc := NewCredentialService(store, secrets.NewCipher("test-secret"), exchanger,
		WithRetryBaseDelay(time.Millisecond))
	ctx := context.Background()

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{RefreshToken: "rt-1"})
	require.NoError(t, err)

	result, err := svc.RefreshWithRetry(ctx, id, 5)
	require.NoError(t, err)
	assert.Equal(t, "at-new", result.AccessToken)
	assert.Equal(t, 3, exchanger.calls)
}

func TestCredentialService_RefreshWithRetry_ExhaustsAttempts(t *testing.T) {
	store := memory.NewCredentialStore()
	exchanger := &flakyExchanger{failures: 100}
	svc := NewCredentialService(store, secrets.NewCipher("test-secret"), exchanger,
		WithRetryBaseDelay(time.Millisecond))
	ctx := context.Background()

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{RefreshToken: "rt-1"})
	require.NoError(t, err)

	_, err = svc.RefreshWithRetry(ctx, id, 3)
	require.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.Equal(t, 3, exchanger.calls)
}

func TestCredentialService_RefreshWithRetry_NoRetryOnValidationFailure(t *testing.T) {
	store := memory.NewCredentialStore()
	exchanger := &flakyExchanger{failures: 100}
	svc := NewCredentialService(store, secrets.NewCipher("test-secret"), exchanger,
		WithRetryBaseDelay(time.Millisecond))
	ctx := context.Background()

	id, err := svc.Create(ctx, "api_key", domain.CredentialConfig{APIKeys: []string{"sk-1"}})
	require.NoError(t, err)

	_, err = svc.RefreshWithRetry(ctx, id, 3)
	require.ErrorIs(t, err, domain.ErrRefreshNotSupported)
	assert.Zero(t, exchanger.calls)
}

func TestCredentialService_RefreshWithRetry_CancelledBetweenAttempts(t *testing.T) {
	store := memory.NewCredentialStore()
	exchanger := &flakyExchanger{failures: 100}
	svc := NewCredentialService(store, secrets.NewCipher("test-secret"), exchanger,
		WithRetryBaseDelay(time.Hour)) // would block without cancellation
	ctx, cancel := context.WithCancel(context.Background())

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{RefreshToken: "rt-1"})
	require.NoError(t, err)

	cancel()
	_, err = svc.RefreshWithRetry(ctx, id, 3)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, exchanger.calls)
}

// flakyExchanger fails a fixed number of times before succeeding.
type flakyExchanger struct {
	failures int
	calls    int
}

func (f *flakyExchanger) Refresh(context.Context, string, string) (*domain.TokenRefreshResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, &workos.HTTPError{StatusCode: 503, Body: "try later"}
	}
	return &domain.TokenRefreshResult{AccessToken: "at-new"}, nil
}

func (f *flakyExchanger) FetchOrgIDs(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *flakyExchanger) ValidateAccessToken(context.Context, string) bool {
	return true
}
