package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/droidgate/internal/core/domain"
	"github.com/custodia-labs/droidgate/internal/core/ports/driven"
	"github.com/custodia-labs/droidgate/internal/core/ports/driving"
	"github.com/custodia-labs/droidgate/internal/logger"
)

// RefreshScheduler proactively refreshes OAuth credentials before their
// access tokens lapse, so acquisition rarely hands out a token that is
// about to expire. Reactive refresh at acquisition time still covers the
// gap between scans.
type RefreshScheduler struct {
	store       driven.CredentialStore
	credentials driving.CredentialService
	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRefreshScheduler creates a scheduler from settings.
func NewRefreshScheduler(
	store driven.CredentialStore,
	credentials driving.CredentialService,
	settings domain.Settings,
) *RefreshScheduler {
	settings.ApplyDefaults()
	return &RefreshScheduler{
		store:       store,
		credentials: credentials,
		interval:    settings.RefreshInterval,
		maxAttempts: settings.RefreshMaxAttempts,
	}
}

// Start begins the scan loop. This method blocks until Stop is called or
// the context is cancelled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Scan once immediately so freshly loaded credentials with stale
	// tokens do not wait a full interval.
	s.scan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for an in-progress
// scan to finish.
func (s *RefreshScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// scan refreshes every OAuth credential whose token is expired or
// expiring soon and which holds a refresh token.
func (s *RefreshScheduler) scan(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	records, err := s.store.List(ctx)
	if err != nil {
		logger.Warn("refresh scan: list credentials: %v", err)
		return
	}

	for _, rec := range records {
		if rec.AuthType != domain.AuthTypeOAuth || rec.RefreshToken == "" {
			continue
		}
		if !domain.IsTokenExpired(rec.ExpiresAt) && !domain.IsTokenExpiringSoon(rec.ExpiresAt) {
			continue
		}

		logger.Debug("refresh scan: refreshing credential %s", rec.ID)
		if _, err := s.credentials.RefreshWithRetry(ctx, rec.ID, s.maxAttempts); err != nil {
			logger.Warn("refresh scan: credential %s: %v", rec.ID, err)
		}

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}
	}
}
