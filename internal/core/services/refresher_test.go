package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/droidgate/internal/adapters/driven/secrets"
	"github.com/custodia-labs/droidgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/droidgate/internal/core/domain"
)

func newTestScheduler(t *testing.T, exchanger *fakeExchanger) (*RefreshScheduler, *CredentialService, *memory.CredentialStore) {
	t.Helper()
	store := memory.NewCredentialStore()
	svc := NewCredentialService(store, secrets.NewCipher("test-secret"), exchanger,
		WithRetryBaseDelay(time.Millisecond))
	sched := NewRefreshScheduler(store, svc, domain.Settings{
		EncryptionKey:      "test-secret",
		RefreshInterval:    10 * time.Millisecond,
		RefreshMaxAttempts: 2,
	})
	return sched, svc, store
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRefreshScheduler_RefreshesExpiredCredential(t *testing.T) {
	exchanger := &fakeExchanger{result: &domain.TokenRefreshResult{
		AccessToken: "at-fresh",
		ExpiresAt:   time.Now().Add(8 * time.Hour),
	}}
	sched, svc, store := newTestScheduler(t, exchanger)
	ctx := context.Background()

	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{
		AccessToken:  "at-stale",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	go sched.Start(ctx)
	defer sched.Stop()

	waitFor(t, time.Second, func() bool {
		rec, err := store.Get(ctx, id)
		return err == nil && rec.AccessToken == "at-fresh"
	})
}

func TestRefreshScheduler_RefreshesExpiringSoonCredential(t *testing.T) {
	exchanger := &fakeExchanger{result: &domain.TokenRefreshResult{
		AccessToken: "at-fresh",
		ExpiresAt:   time.Now().Add(8 * time.Hour),
	}}
	sched, svc, store := newTestScheduler(t, exchanger)
	ctx := context.Background()

	// Not expired (beyond the 5 minute skew) but inside the 1 hour window.
	id, err := svc.Create(ctx, "oauth", domain.CredentialConfig{
		AccessToken:  "at-aging",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(30 * time.Minute),
	})
	require.NoError(t, err)

	go sched.Start(ctx)
	defer sched.Stop()

	waitFor(t, time.Second, func() bool {
		rec, err := store.Get(ctx, id)
		return err == nil && rec.AccessToken == "at-fresh"
	})
}

func TestRefreshScheduler_SkipsFreshAndNonOAuthCredentials(t *testing.T) {
	exchanger := &fakeExchanger{result: &domain.TokenRefreshResult{AccessToken: "at-fresh"}}
	sched, svc, _ := newTestScheduler(t, exchanger)
	ctx := context.Background()

	// Fresh token, well outside the expiring-soon window.
	_, err := svc.Create(ctx, "oauth", domain.CredentialConfig{
		AccessToken:  "at-fresh-enough",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(3 * time.Hour),
	})
	require.NoError(t, err)

	// API key credentials have nothing to refresh.
	_, err = svc.Create(ctx, "api_key", domain.CredentialConfig{APIKeys: []string{"sk-1"}})
	require.NoError(t, err)

	go sched.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, sched.Stop())

	assert.Zero(t, exchanger.calls)
}

func TestRefreshScheduler_StopIsIdempotent(t *testing.T) {
	sched, _, _ := newTestScheduler(t, &fakeExchanger{})

	go sched.Start(context.Background())
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, sched.Stop())
	require.NoError(t, sched.Stop())
}

func TestRefreshScheduler_StartTwiceReturnsImmediately(t *testing.T) {
	sched, _, _ := newTestScheduler(t, &fakeExchanger{})

	go sched.Start(context.Background())
	time.Sleep(5 * time.Millisecond)
	defer sched.Stop()

	// Second Start on a running scheduler does not block.
	done := make(chan error, 1)
	go func() { done <- sched.Start(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second Start did not return")
	}
}
