package domain

import "fmt"

// Provider error types.
const (
	// ErrorTypeAuthentication means the token is expired or invalid.
	ErrorTypeAuthentication = "authentication"
	// ErrorTypeAuthorization means the credential lacks permission.
	ErrorTypeAuthorization = "authorization"
	// ErrorTypeRateLimit means the upstream throttled the request.
	ErrorTypeRateLimit = "rate_limit"
	// ErrorTypeServer means the upstream failed internally.
	ErrorTypeServer = "server_error"
)

// ProviderError is a classified upstream failure with retry hints. It is
// advisory state passed back through Release; it never mutates the store
// by itself.
type ProviderError struct {
	// ErrorType is one of the ErrorType constants.
	ErrorType string `json:"error_type"`
	// Message is the human-readable failure description.
	Message string `json:"message"`
	// StatusCode is the upstream HTTP status, zero if unknown.
	StatusCode int `json:"status_code,omitempty"`
	// Retryable is true if the caller may retry the request.
	Retryable bool `json:"retryable"`
	// CooldownSeconds is the advisory wait before retrying.
	CooldownSeconds int `json:"cooldown_seconds,omitempty"`
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.ErrorType, e.StatusCode, e.Message)
}

// ClassifyStatus maps an upstream HTTP status to a ProviderError.
// Returns nil for statuses with no special handling; callers treat those
// as generic failures.
//
// The table drives retry policy:
//
//	401: refresh the token and retry immediately
//	403: fail permanently
//	429: retry after a 60s cooldown
//	5xx: retry after a 10s cooldown
func ClassifyStatus(status int, body string) *ProviderError {
	switch {
	case status == 401:
		return &ProviderError{
			ErrorType:       ErrorTypeAuthentication,
			Message:         "token expired or invalid",
			StatusCode:      status,
			Retryable:       true,
			CooldownSeconds: 0,
		}
	case status == 403:
		return &ProviderError{
			ErrorType:  ErrorTypeAuthorization,
			Message:    "insufficient permissions",
			StatusCode: status,
			Retryable:  false,
		}
	case status == 429:
		return &ProviderError{
			ErrorType:       ErrorTypeRateLimit,
			Message:         "request rate limited",
			StatusCode:      status,
			Retryable:       true,
			CooldownSeconds: 60,
		}
	case status >= 500 && status <= 599:
		return &ProviderError{
			ErrorType:       ErrorTypeServer,
			Message:         fmt.Sprintf("upstream server error: %s", body),
			StatusCode:      status,
			Retryable:       true,
			CooldownSeconds: 10,
		}
	default:
		return nil
	}
}
