package domain

import (
	"fmt"
	"time"
)

// DefaultEncryptionKey is the documented fallback used when no operator
// secret is configured. It is guessable and therefore insecure; Validate
// rejects it when Production is set.
const DefaultEncryptionKey = "default-droid-encryption-key"

// Default settings values.
const (
	// DefaultRefreshMaxAttempts bounds the refresh retry loop.
	DefaultRefreshMaxAttempts = 3

	// DefaultRefreshInterval is how often the background refresher scans
	// for expiring tokens.
	DefaultRefreshInterval = 45 * time.Minute
)

// Settings holds process-level configuration for the credential core.
type Settings struct {
	// EncryptionKey is the symmetric secret protecting API keys at rest.
	EncryptionKey string `json:"encryption_key"`

	// Production enables strict validation for production deployments.
	Production bool `json:"production"`

	// RefreshMaxAttempts bounds the token refresh retry loop.
	RefreshMaxAttempts int `json:"refresh_max_attempts"`

	// RefreshInterval is the background refresher's scan interval.
	RefreshInterval time.Duration `json:"refresh_interval"`
}

// DefaultSettings returns settings with documented defaults applied.
func DefaultSettings() Settings {
	return Settings{
		EncryptionKey:      DefaultEncryptionKey,
		RefreshMaxAttempts: DefaultRefreshMaxAttempts,
		RefreshInterval:    DefaultRefreshInterval,
	}
}

// ApplyDefaults fills zero-valued fields with documented defaults.
func (s *Settings) ApplyDefaults() {
	if s.EncryptionKey == "" {
		s.EncryptionKey = DefaultEncryptionKey
	}
	if s.RefreshMaxAttempts <= 0 {
		s.RefreshMaxAttempts = DefaultRefreshMaxAttempts
	}
	if s.RefreshInterval <= 0 {
		s.RefreshInterval = DefaultRefreshInterval
	}
}

// Validate checks the settings for configuration errors. In production
// mode the known-default encryption key is rejected rather than silently
// used for real secrets.
func (s *Settings) Validate() error {
	if s.EncryptionKey == "" {
		return fmt.Errorf("%w: encryption_key must not be empty", ErrInvalidInput)
	}
	if s.Production && s.EncryptionKey == DefaultEncryptionKey {
		return fmt.Errorf("%w: encryption_key must be set explicitly in production", ErrInvalidInput)
	}
	return nil
}
