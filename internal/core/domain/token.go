package domain

import "time"

const (
	// TokenExpirySkew is subtracted from the stored expiry when deciding
	// whether a token needs refreshing, so a token is refreshed before it
	// actually lapses mid-request.
	TokenExpirySkew = 5 * time.Minute

	// TokenExpiringSoonWindow is the horizon for proactive refresh.
	TokenExpiringSoonWindow = time.Hour

	// DefaultTokenLifetime is assumed when the token exchange response
	// carries no expiry at all.
	DefaultTokenLifetime = 8 * time.Hour
)

// TokenRefreshResult is the outcome of one OAuth token exchange, applied
// onto a credential record. An empty RefreshToken means the exchange did
// not rotate the refresh token.
type TokenRefreshResult struct {
	// AccessToken is the newly issued bearer token.
	AccessToken string `json:"access_token"`
	// RefreshToken is the rotated refresh token, empty if unchanged.
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is when the new access token expires.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	// OrganizationID is the organization reported by the exchange, if any.
	OrganizationID string `json:"organization_id,omitempty"`
	// UserID is the user identifier reported by the exchange, if any.
	UserID string `json:"user_id,omitempty"`
	// OwnerEmail is the owner email reported by the exchange, if any.
	OwnerEmail string `json:"owner_email,omitempty"`
}

// IsTokenExpired returns true if the token needs refreshing: the expiry is
// unknown (zero), or it falls within TokenExpirySkew of now. An unknown
// expiry is conservatively treated as expired.
func IsTokenExpired(expiresAt time.Time) bool {
	if expiresAt.IsZero() {
		return true
	}
	return !expiresAt.After(time.Now().Add(TokenExpirySkew))
}

// IsTokenExpiringSoon returns true only if an expiry is known and falls
// within TokenExpiringSoonWindow of now. Unlike IsTokenExpired, an unknown
// expiry is NOT considered expiring soon; the asymmetry keeps proactive
// refresh from hammering credentials that never report an expiry.
func IsTokenExpiringSoon(expiresAt time.Time) bool {
	if expiresAt.IsZero() {
		return false
	}
	return expiresAt.Before(time.Now().Add(TokenExpiringSoonWindow))
}
