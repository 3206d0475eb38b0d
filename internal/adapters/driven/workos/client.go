// Package workos implements the WorkOS OAuth token exchange used by
// Factory credentials, plus the Factory organization lookup used as a
// token-validity probe.
package workos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/droidgate/internal/core/domain"
	"github.com/custodia-labs/droidgate/internal/core/ports/driven"
	"github.com/custodia-labs/droidgate/internal/logger"
)

// WorkOS / Factory endpoints. Fixed by the Factory CLI auth flow.
const (
	// DefaultClientID is the Factory CLI's WorkOS client identifier.
	DefaultClientID = "client_01HNM792M5G5G1A2THWPXKFMXB"
	// DefaultTokenURL is the WorkOS token exchange endpoint.
	DefaultTokenURL = "https://api.workos.com/user_management/authenticate"
	// DefaultOrgURL is the Factory organization lookup endpoint.
	DefaultOrgURL = "https://app.factory.ai/api/cli/org"
)

// Timeouts per endpoint. The exchange is allowed a slower handshake than
// the lookup probe.
const (
	tokenConnectTimeout = 30 * time.Second
	tokenTotalTimeout   = 60 * time.Second
	orgConnectTimeout   = 15 * time.Second
	orgTotalTimeout     = 30 * time.Second
)

// Exchange requests are throttled well below WorkOS limits so a refresh
// storm cannot get the client id rate limited.
const (
	exchangePerSecond = 2.0
	exchangeBurst     = 5
)

// Ensure Client implements the interface.
var _ driven.TokenExchanger = (*Client)(nil)

// HTTPError is a non-success upstream response. It carries the status and
// body so callers can classify the failure for retry policy.
type HTTPError struct {
	// StatusCode is the upstream HTTP status.
	StatusCode int
	// Body is the raw response body.
	Body string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Client performs WorkOS token exchanges and Factory organization lookups.
type Client struct {
	tokenURL    string
	orgURL      string
	clientID    string
	tokenClient *http.Client
	orgClient   *http.Client
	limiter     *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithTokenURL overrides the token exchange endpoint. Used by tests.
func WithTokenURL(u string) Option {
	return func(c *Client) { c.tokenURL = u }
}

// WithOrgURL overrides the organization lookup endpoint. Used by tests.
func WithOrgURL(u string) Option {
	return func(c *Client) { c.orgURL = u }
}

// WithClientID overrides the WorkOS client identifier.
func WithClientID(id string) Option {
	return func(c *Client) { c.clientID = id }
}

// NewClient creates a WorkOS client with the fixed Factory endpoints.
func NewClient(opts ...Option) *Client {
	c := &Client{
		tokenURL:    DefaultTokenURL,
		orgURL:      DefaultOrgURL,
		clientID:    DefaultClientID,
		tokenClient: newHTTPClient(tokenConnectTimeout, tokenTotalTimeout),
		orgClient:   newHTTPClient(orgConnectTimeout, orgTotalTimeout),
		limiter:     rate.NewLimiter(rate.Limit(exchangePerSecond), exchangeBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClient builds a client with separate connect and total timeouts.
func newHTTPClient(connectTimeout, totalTimeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: totalTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}
}

// tokenResponse is the WorkOS authenticate response format.
type tokenResponse struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	ExpiresAt      string `json:"expires_at"`
	ExpiresIn      *int64 `json:"expires_in"`
	TokenType      string `json:"token_type"`
	OrganizationID string `json:"organization_id"`
	User           *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken, organizationID string) (*domain.TokenRefreshResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)
	if organizationID != "" {
		form.Set("organization_id", organizationID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logger.Debug("workos: refreshing access token")

	resp, err := c.tokenClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token exchange response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token exchange response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token exchange response has no access_token")
	}

	result := &domain.TokenRefreshResult{
		AccessToken:    tr.AccessToken,
		RefreshToken:   tr.RefreshToken,
		ExpiresAt:      resolveExpiry(tr),
		OrganizationID: tr.OrganizationID,
	}
	if tr.User != nil {
		result.UserID = tr.User.ID
		result.OwnerEmail = tr.User.Email
	}

	logger.Debug("workos: access token refreshed, expires %s", result.ExpiresAt.Format(time.RFC3339))
	return result, nil
}

// resolveExpiry computes the new token expiry. Precedence: an explicit
// parseable expires_at, then now+expires_in, then the default lifetime.
func resolveExpiry(tr tokenResponse) time.Time {
	if tr.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, tr.ExpiresAt); err == nil {
			return t
		}
	}
	if tr.ExpiresIn != nil {
		return time.Now().Add(time.Duration(*tr.ExpiresIn) * time.Second)
	}
	return time.Now().Add(domain.DefaultTokenLifetime)
}

// orgResponse is the Factory organization lookup response format.
type orgResponse struct {
	WorkOSOrgIDs []string `json:"workosOrgIds"`
}

// FetchOrgIDs returns the organization ids visible to an access token.
func (c *Client) FetchOrgIDs(ctx context.Context, accessToken string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.orgURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(domain.FactoryClientHeader, domain.FactoryClientValue)
	req.Header.Set("User-Agent", domain.FactoryUserAgent)

	resp, err := c.orgClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("organization lookup request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read organization lookup response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var or orgResponse
	if err := json.Unmarshal(body, &or); err != nil {
		return nil, fmt.Errorf("decode organization lookup response: %w", err)
	}
	return or.WorkOSOrgIDs, nil
}

// ValidateAccessToken probes the organization lookup with the token.
// Any transport or HTTP failure reads as invalid.
func (c *Client) ValidateAccessToken(ctx context.Context, accessToken string) bool {
	if _, err := c.FetchOrgIDs(ctx, accessToken); err != nil {
		logger.Debug("workos: access token probe failed: %v", err)
		return false
	}
	return true
}
