// Package domain defines the core business entities for Droidgate.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CredentialRecord: One account's stored auth material (OAuth pair or
//     API key pool) plus health and usage metadata
//   - APIKeyEntry: A single encrypted API key inside a credential
//   - AcquiredCredential: The transient bundle handed to request code
//   - ProviderError: A classified upstream failure with retry hints
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
