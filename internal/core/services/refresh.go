package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/droidgate/internal/core/domain"
	"github.com/custodia-labs/droidgate/internal/logger"
)

// Refresh exchanges the stored refresh token for new OAuth tokens and
// applies the result to the record.
//
// The store lock is never held across the exchange: a snapshot is read
// first, the network round trip runs lock-free, and the result is applied
// through the store's atomic Update. If a concurrent release races with
// the apply, last writer wins on overlapping fields; both orders are
// acceptable.
func (s *CredentialService) Refresh(ctx context.Context, id string) (*domain.TokenRefreshResult, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("credential %s: %w", id, err)
	}

	// Validation failures never reach the network.
	if rec.AuthType != domain.AuthTypeOAuth {
		return nil, fmt.Errorf("%w: credential %s is %s", domain.ErrRefreshNotSupported, id, rec.AuthType)
	}
	if rec.RefreshToken == "" {
		return nil, fmt.Errorf("%w: credential %s", domain.ErrMissingRefreshToken, id)
	}

	result, err := s.exchanger.Refresh(ctx, rec.RefreshToken, rec.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}

	if err := s.store.Update(ctx, id, func(rec *domain.CredentialRecord) error {
		applyRefreshResult(rec, result)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("apply refresh result to credential %s: %w", id, err)
	}

	logger.Info("refreshed tokens for credential %s", id)
	return result, nil
}

// applyRefreshResult overwrites a record's token fields with an exchange
// result. The refresh token is replaced only when the exchange rotated it,
// and identity fields only when the response supplied them; partial
// responses must not erase previously known values.
func applyRefreshResult(rec *domain.CredentialRecord, result *domain.TokenRefreshResult) {
	rec.AccessToken = result.AccessToken
	if result.RefreshToken != "" {
		rec.RefreshToken = result.RefreshToken
	}
	rec.ExpiresAt = result.ExpiresAt
	rec.LastRefresh = time.Now()
	rec.IsHealthy = true
	rec.LastError = ""

	if result.OrganizationID != "" {
		rec.OrganizationID = result.OrganizationID
	}
	if result.UserID != "" {
		rec.UserID = result.UserID
	}
	if result.OwnerEmail != "" {
		rec.OwnerEmail = result.OwnerEmail
	}
}

// RefreshWithRetry retries Refresh with exponential backoff: the sleep
// after attempt k is retryBaseDelay*2^k (one second doubling, by default).
// Only exchange failures are retried; validation and store failures return
// immediately. Backoff sleeps hold no lock and cancellation takes effect
// at the retry boundary.
func (s *CredentialService) RefreshWithRetry(ctx context.Context, id string, maxAttempts int) (*domain.TokenRefreshResult, error) {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultRefreshMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := s.Refresh(ctx, id)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, domain.ErrTokenRefreshFailed) {
			return nil, err
		}
		lastErr = err
		logger.Warn("token refresh failed (attempt %d/%d): %v", attempt+1, maxAttempts, err)

		if attempt == maxAttempts-1 {
			break
		}
		delay := s.retryBaseDelay * (1 << attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}
