package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/droidgate/internal/core/domain"
	"github.com/custodia-labs/droidgate/internal/core/ports/driven"
	"github.com/custodia-labs/droidgate/internal/core/ports/driving"
	"github.com/custodia-labs/droidgate/internal/logger"
)

// Ensure CredentialService implements the interface.
var _ driving.CredentialService = (*CredentialService)(nil)

// CredentialService manages the credential lifecycle. It never holds the
// store's lock across a network call: reads take a snapshot, network round
// trips run lock-free, and results are applied through the store's atomic
// Update.
type CredentialService struct {
	store     driven.CredentialStore
	cipher    driven.SecretCipher
	exchanger driven.TokenExchanger

	retryBaseDelay time.Duration
}

// Option customises a CredentialService.
type Option func(*CredentialService)

// WithRetryBaseDelay overrides the first retry backoff delay.
// The default is one second; tests shorten it.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(s *CredentialService) { s.retryBaseDelay = d }
}

// NewCredentialService creates a credential service.
func NewCredentialService(
	store driven.CredentialStore,
	cipher driven.SecretCipher,
	exchanger driven.TokenExchanger,
	opts ...Option,
) *CredentialService {
	s := &CredentialService{
		store:          store,
		cipher:         cipher,
		exchanger:      exchanger,
		retryBaseDelay: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the config, encrypts any plaintext API keys, and stores
// a new credential record. Nothing is stored when validation fails.
func (s *CredentialService) Create(ctx context.Context, authType string, cfg domain.CredentialConfig) (string, error) {
	at, err := domain.ParseAuthType(authType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, authType)
	}

	endpointType := cfg.EndpointType
	if endpointType == "" {
		endpointType = domain.EndpointAnthropic
	}
	if !endpointType.Valid() {
		return "", fmt.Errorf("%w: unknown endpoint type %q", domain.ErrInvalidInput, cfg.EndpointType)
	}

	rec := domain.CredentialRecord{
		ID:             uuid.New().String(),
		Name:           cfg.Name,
		AuthType:       at,
		EndpointType:   endpointType,
		AccessToken:    cfg.AccessToken,
		RefreshToken:   cfg.RefreshToken,
		ExpiresAt:      cfg.ExpiresAt,
		OrganizationID: cfg.OrganizationID,
		UserID:         cfg.UserID,
		OwnerEmail:     cfg.OwnerEmail,
		OwnerName:      cfg.OwnerName,
		TokenType:      domain.DefaultTokenType,
		IsHealthy:      true,
	}

	switch at {
	case domain.AuthTypeOAuth:
		if !rec.HasToken() {
			return "", fmt.Errorf("%w: oauth credentials need an access_token or refresh_token", domain.ErrInvalidInput)
		}
	case domain.AuthTypeAPIKey:
		entries, err := s.encryptKeys(cfg.APIKeys)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", fmt.Errorf("%w: api_key credentials need at least one API key", domain.ErrInvalidInput)
		}
		rec.APIKeys = entries
	}

	if err := s.store.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("save credential: %w", err)
	}

	logger.Info("created credential %s (type %s)", rec.ID, at)
	return rec.ID, nil
}

// encryptKeys fingerprints and encrypts plaintext keys into fresh active
// entries. Empty strings are skipped.
func (s *CredentialService) encryptKeys(keys []string) ([]domain.APIKeyEntry, error) {
	var entries []domain.APIKeyEntry
	for _, key := range keys {
		if key == "" {
			continue
		}
		encrypted, err := s.cipher.Encrypt(key)
		if err != nil {
			return nil, fmt.Errorf("encrypt API key: %w", err)
		}
		entries = append(entries, domain.APIKeyEntry{
			ID:           uuid.New().String(),
			Hash:         s.cipher.Fingerprint(key),
			EncryptedKey: encrypted,
			CreatedAt:    time.Now(),
			Status:       domain.KeyStatusActive,
		})
	}
	return entries, nil
}

// Acquire selects a usable credential for the model and returns a
// ready-to-use bundle. Selection is deliberately simple: the first healthy
// record in store order, and for api_key credentials a uniform-random
// active key. There is no fairness guarantee across repeated acquisitions.
func (s *CredentialService) Acquire(ctx context.Context, model string) (*domain.AcquiredCredential, error) {
	if !domain.SupportsModel(model) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedModel, model)
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	var selected *domain.CredentialRecord
	for i := range records {
		if records[i].IsHealthy {
			selected = &records[i]
			break
		}
	}
	if selected == nil {
		return nil, domain.ErrNoHealthyCredential
	}

	token, err := s.resolveToken(selected)
	if err != nil {
		return nil, err
	}

	logger.Debug("acquired credential %s for model %s", selected.ID, model)

	return &domain.AcquiredCredential{
		ID:       selected.ID,
		Name:     selected.Name,
		AuthType: string(selected.AuthType),
		BaseURL:  selected.EndpointType.BaseURL(),
		Headers: map[string]string{
			"Content-Type":             "application/json",
			"User-Agent":               domain.FactoryUserAgent,
			domain.FactoryClientHeader: domain.FactoryClientValue,
			"Authorization":            "Bearer " + token,
		},
	}, nil
}

// resolveToken produces the plaintext bearer token for a selected record.
func (s *CredentialService) resolveToken(rec *domain.CredentialRecord) (string, error) {
	switch rec.AuthType {
	case domain.AuthTypeOAuth:
		if rec.AccessToken == "" {
			return "", fmt.Errorf("%w: credential %s", domain.ErrMissingAccessToken, rec.ID)
		}
		return rec.AccessToken, nil

	case domain.AuthTypeAPIKey:
		active := rec.ActiveKeys()
		if len(active) == 0 {
			return "", fmt.Errorf("%w: credential %s", domain.ErrNoActiveKey, rec.ID)
		}
		entry := active[rand.IntN(len(active))]
		key, err := s.cipher.Decrypt(entry.EncryptedKey)
		if err != nil {
			return "", fmt.Errorf("decrypt API key %s: %w", entry.ID, err)
		}
		return key, nil

	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedAuthType, rec.AuthType)
	}
}

// Release records the outcome of one credential use. Usage is always
// counted. An error outcome records the message and flips the credential
// unhealthy only when the outcome explicitly asks for it; a success always
// heals. Unknown ids are a no-op, not an error.
func (s *CredentialService) Release(ctx context.Context, id string, outcome domain.UsageOutcome) error {
	err := s.store.Update(ctx, id, func(rec *domain.CredentialRecord) error {
		rec.UsageCount++

		if outcome.Error != nil {
			rec.ErrorCount++
			rec.LastError = outcome.Error.Message
			if outcome.Error.MarkUnhealthy {
				rec.IsHealthy = false
				logger.Warn("credential %s marked unhealthy: %s", id, outcome.Error.Message)
			}
			return nil
		}

		rec.IsHealthy = true
		rec.LastError = ""
		logger.Debug("credential %s used successfully", id)
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// Validate reports whether a credential is healthy and fully configured.
// Unknown ids report invalid rather than an error.
func (s *CredentialService) Validate(ctx context.Context, id string) (*domain.ValidationResult, error) {
	rec, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ValidationResult{Valid: false, Message: "credential not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case !rec.Usable():
		return &domain.ValidationResult{Valid: false, Message: "credential configuration is incomplete"}, nil
	case !rec.IsHealthy:
		return &domain.ValidationResult{Valid: false, Message: "credential is unhealthy"}, nil
	default:
		return &domain.ValidationResult{Valid: true, Message: "credential is valid"}, nil
	}
}
