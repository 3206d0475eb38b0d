// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// CredentialService is the credential lifecycle: create, acquire,
// release, validate, refresh. RefreshScheduler keeps OAuth tokens fresh
// in the background.
package services
