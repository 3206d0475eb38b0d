// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CredentialStore: The canonical credential mapping with safe
//     concurrent access
//   - SecretCipher: At-rest encryption of API key material
//   - TokenExchanger: The WorkOS OAuth token exchange round trip
//   - SettingsStore: Persistence of process-level settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
