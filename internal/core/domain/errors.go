package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedAuthType indicates an unknown authentication type.
	ErrUnsupportedAuthType = errors.New("unsupported auth type")

	// ErrUnsupportedModel indicates a model no credential can serve.
	ErrUnsupportedModel = errors.New("unsupported model")

	// Acquisition errors.

	// ErrNoHealthyCredential indicates no credential is eligible for selection.
	ErrNoHealthyCredential = errors.New("no healthy credential available")

	// ErrNoActiveKey indicates an api_key credential has no active keys left.
	ErrNoActiveKey = errors.New("no active API key available")

	// ErrMissingAccessToken indicates an OAuth credential has no access token.
	ErrMissingAccessToken = errors.New("credential has no access token")

	// Refresh errors.

	// ErrMissingRefreshToken indicates a refresh was requested without a
	// stored refresh token.
	ErrMissingRefreshToken = errors.New("credential has no refresh token")

	// ErrRefreshNotSupported indicates a refresh was requested for a
	// credential type that does not use refreshable tokens.
	ErrRefreshNotSupported = errors.New("credential type does not support token refresh")

	// ErrTokenRefreshFailed indicates the token exchange failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")
)
