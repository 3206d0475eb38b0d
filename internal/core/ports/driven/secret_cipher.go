package driven

// SecretCipher protects secret material at rest.
//
// Ciphertext is the serialized "iv_hex:ciphertext_hex" token format; the
// empty string is the canonical encoding of "no secret" and round-trips
// through both directions unchanged.
type SecretCipher interface {
	// Encrypt returns the ciphertext token for a plaintext secret.
	Encrypt(plaintext string) (string, error)

	// Decrypt recovers the plaintext from a ciphertext token. Malformed
	// tokens and decryption failures are distinct error kinds.
	Decrypt(token string) (string, error)

	// Fingerprint returns a one-way hex digest of a plaintext secret,
	// used for deduplication, never for recovery.
	Fingerprint(plaintext string) string
}
