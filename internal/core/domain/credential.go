package domain

import "time"

// AuthType identifies how a credential authenticates against the upstream.
type AuthType string

const (
	// AuthTypeOAuth authenticates with a WorkOS OAuth token pair.
	AuthTypeOAuth AuthType = "oauth"
	// AuthTypeAPIKey authenticates with a pool of static API keys.
	AuthTypeAPIKey AuthType = "api_key"
)

// Valid returns true if the auth type is a known variant.
func (a AuthType) Valid() bool {
	return a == AuthTypeOAuth || a == AuthTypeAPIKey
}

// ParseAuthType converts a string into an AuthType.
// Returns ErrUnsupportedAuthType for unknown values.
func ParseAuthType(s string) (AuthType, error) {
	at := AuthType(s)
	if !at.Valid() {
		return "", ErrUnsupportedAuthType
	}
	return at, nil
}

// API key entry statuses.
const (
	// KeyStatusActive marks a key as eligible for selection.
	KeyStatusActive = "active"
	// KeyStatusError marks a key as failed and excluded from selection.
	KeyStatusError = "error"
)

// DefaultTokenType is the token type assumed when none is stored.
const DefaultTokenType = "Bearer"

// APIKeyEntry is a single encrypted API key inside a credential.
//
// Hash and EncryptedKey are derived from the same plaintext at creation
// time and never diverge. Hash is a one-way fingerprint used only for
// deduplication and display, never for recovery.
type APIKeyEntry struct {
	// ID is the unique entry identifier (UUID).
	ID string `json:"id"`
	// Hash is the hex SHA-256 fingerprint of the plaintext key.
	Hash string `json:"hash"`
	// EncryptedKey is the key ciphertext in "iv_hex:ciphertext_hex" form.
	EncryptedKey string `json:"encrypted_key"`
	// CreatedAt is when the entry was created.
	CreatedAt time.Time `json:"created_at"`
	// LastUsedAt is when the key was last selected, zero if never.
	LastUsedAt time.Time `json:"last_used_at,omitempty"`
	// UsageCount counts selections of this key.
	UsageCount uint64 `json:"usage_count"`
	// Status is KeyStatusActive or KeyStatusError.
	Status string `json:"status"`
	// ErrorMessage holds the last failure for this key, if any.
	ErrorMessage string `json:"error_message,omitempty"`
}

// CredentialRecord is one account's stored auth material plus health and
// usage metadata. The credential store exclusively owns all records; other
// components work through the store's operations and never retain a
// long-lived reference.
type CredentialRecord struct {
	// ID is the unique credential identifier (UUID).
	ID string `json:"id"`
	// Name is an optional display name.
	Name string `json:"name,omitempty"`
	// AuthType selects OAuth or API key authentication. Immutable after creation.
	AuthType AuthType `json:"auth_type"`
	// EndpointType selects the upstream API path.
	EndpointType EndpointType `json:"endpoint_type"`

	// OAuth fields, meaningful only when AuthType is AuthTypeOAuth.

	// AccessToken is the current bearer token.
	AccessToken string `json:"access_token,omitempty"`
	// RefreshToken is exchanged for new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is when the access token expires, zero if unknown.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	// OrganizationID is the WorkOS organization the token belongs to.
	OrganizationID string `json:"organization_id,omitempty"`
	// UserID is the authenticated user's identifier.
	UserID string `json:"user_id,omitempty"`
	// OwnerEmail is the credential owner's email address.
	OwnerEmail string `json:"owner_email,omitempty"`
	// OwnerName is the credential owner's display name.
	OwnerName string `json:"owner_name,omitempty"`
	// TokenType is the authorization scheme, normally "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// APIKeys holds the key pool, used only when AuthType is AuthTypeAPIKey.
	APIKeys []APIKeyEntry `json:"api_keys,omitempty"`

	// LastRefresh is when the OAuth tokens were last refreshed.
	LastRefresh time.Time `json:"last_refresh,omitempty"`
	// IsHealthy gates acquisition. Starts true; flips false only on an
	// explicit unhealthy signal from a release outcome.
	IsHealthy bool `json:"is_healthy"`
	// UsageCount counts completed uses of this credential.
	UsageCount uint64 `json:"usage_count"`
	// ErrorCount counts failed uses of this credential.
	ErrorCount uint64 `json:"error_count"`
	// LastError holds the most recent failure message, cleared on success.
	LastError string `json:"last_error,omitempty"`
}

// Clone returns a deep copy of the record. The API key slice is copied so
// callers cannot alias store-owned state.
func (c *CredentialRecord) Clone() CredentialRecord {
	out := *c
	if c.APIKeys != nil {
		out.APIKeys = make([]APIKeyEntry, len(c.APIKeys))
		copy(out.APIKeys, c.APIKeys)
	}
	return out
}

// ActiveKeys returns the entries with KeyStatusActive.
func (c *CredentialRecord) ActiveKeys() []APIKeyEntry {
	var active []APIKeyEntry
	for _, k := range c.APIKeys {
		if k.Status == KeyStatusActive {
			active = append(active, k)
		}
	}
	return active
}

// HasToken returns true if the record holds an access or refresh token.
func (c *CredentialRecord) HasToken() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// Usable reports whether the record is configured well enough to serve
// requests, ignoring health state.
func (c *CredentialRecord) Usable() bool {
	switch c.AuthType {
	case AuthTypeOAuth:
		return c.HasToken()
	case AuthTypeAPIKey:
		return len(c.ActiveKeys()) > 0
	default:
		return false
	}
}

// CredentialConfig is the creation input for a credential. Plaintext API
// keys are encrypted by the service before a record is stored; they are
// never persisted in this form.
type CredentialConfig struct {
	// Name is an optional display name.
	Name string `json:"name,omitempty"`
	// EndpointType selects the upstream API path. Defaults to EndpointAnthropic.
	EndpointType EndpointType `json:"endpoint_type,omitempty"`

	// AccessToken seeds the OAuth access token.
	AccessToken string `json:"access_token,omitempty"`
	// RefreshToken seeds the OAuth refresh token.
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is the known access token expiry, zero if unknown.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	// OrganizationID is the WorkOS organization identifier.
	OrganizationID string `json:"organization_id,omitempty"`
	// UserID is the authenticated user's identifier.
	UserID string `json:"user_id,omitempty"`
	// OwnerEmail is the credential owner's email address.
	OwnerEmail string `json:"owner_email,omitempty"`
	// OwnerName is the credential owner's display name.
	OwnerName string `json:"owner_name,omitempty"`

	// APIKeys are plaintext keys for api_key credentials.
	APIKeys []string `json:"api_keys,omitempty"`
}

// AcquiredCredential is the transient bundle returned to request-serving
// code. It carries a plaintext bearer token inside Headers and must not be
// retained beyond the single outbound call it authorizes.
type AcquiredCredential struct {
	// ID is the credential the bundle was built from.
	ID string `json:"id"`
	// Name is the credential's display name, if any.
	Name string `json:"name,omitempty"`
	// AuthType is the auth type label ("oauth" or "api_key").
	AuthType string `json:"auth_type"`
	// BaseURL is the fully resolved upstream endpoint URL.
	BaseURL string `json:"base_url,omitempty"`
	// Headers are the request headers, including Authorization.
	Headers map[string]string `json:"headers,omitempty"`
	// Metadata carries free-form extra information.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ValidationResult reports whether a credential is currently usable.
type ValidationResult struct {
	// Valid is true if the credential is healthy and fully configured.
	Valid bool `json:"valid"`
	// Message explains the result.
	Message string `json:"message,omitempty"`
	// Details carries free-form extra information.
	Details map[string]any `json:"details,omitempty"`
}

// UsageError describes a failed use reported at release time.
type UsageError struct {
	// Message is the human-readable failure description.
	Message string `json:"message"`
	// MarkUnhealthy requests that the credential be excluded from
	// acquisition until a later success heals it.
	MarkUnhealthy bool `json:"mark_unhealthy,omitempty"`
}

// UsageOutcome is the result of one credential use, reported at release
// time. A nil Error means the use succeeded.
type UsageOutcome struct {
	// Error describes the failure, nil on success.
	Error *UsageError `json:"error,omitempty"`
}
