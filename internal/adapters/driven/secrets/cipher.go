// Package secrets implements at-rest encryption of credential secrets
// using AES-256-CBC with a SHA-256 derived key.
//
// The serialized ciphertext format is "iv_hex:ciphertext_hex". The empty
// string is the canonical encoding of "no secret" and passes through both
// Encrypt and Decrypt unchanged. This format is part of the at-rest
// contract and must round-trip exactly if records are persisted externally.
package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/droidgate/internal/core/ports/driven"
)

// encryptionSalt is mixed into key derivation so the same passphrase used
// elsewhere does not yield the same cipher key.
const encryptionSalt = "droid-account-salt"

// Crypto failure kinds. Malformed tokens and failed decryptions are
// distinct so callers can tell corrupt storage from a wrong key.
var (
	// ErrMalformedCiphertext indicates the token does not parse: wrong
	// field count, invalid hex, or a non-16-byte IV.
	ErrMalformedCiphertext = errors.New("malformed ciphertext token")

	// ErrDecryptionFailed indicates the token parsed but did not decrypt:
	// truncated ciphertext, bad padding, or non-UTF-8 plaintext.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Ensure Cipher implements the interface.
var _ driven.SecretCipher = (*Cipher)(nil)

// Cipher binds the process-wide encryption secret and implements
// driven.SecretCipher.
type Cipher struct {
	secret string
}

// NewCipher creates a cipher bound to the given secret.
func NewCipher(secret string) *Cipher {
	return &Cipher{secret: secret}
}

// Encrypt encrypts plaintext with the bound secret.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	return Encrypt(plaintext, c.secret)
}

// Decrypt decrypts a ciphertext token with the bound secret.
func (c *Cipher) Decrypt(token string) (string, error) {
	return Decrypt(token, c.secret)
}

// Fingerprint returns the hex SHA-256 digest of plaintext.
func (c *Cipher) Fingerprint(plaintext string) string {
	return Fingerprint(plaintext)
}

// DeriveKey derives the 256-bit cipher key from a secret by hashing it
// with a fixed application salt. Deterministic by design so the same
// passphrase always opens the same data. This is not a memory-hard KDF;
// it offers no brute-force resistance beyond the entropy of the secret.
func DeriveKey(secret string) [32]byte {
	h := sha256.New()
	h.Write([]byte(secret))
	h.Write([]byte(encryptionSalt))
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

// Encrypt encrypts plaintext with a key derived from secret and returns
// the "iv_hex:ciphertext_hex" token. A fresh random IV is generated per
// call; the empty string encrypts to the empty string.
func Encrypt(plaintext, secret string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	key := DeriveKey(secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. The empty string decrypts to the empty string.
// Tokens that do not parse return ErrMalformedCiphertext; tokens that
// parse but do not decrypt cleanly return ErrDecryptionFailed.
func Decrypt(token, secret string) (string, error) {
	if token == "" {
		return "", nil
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: expected iv:ciphertext", ErrMalformedCiphertext)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: invalid iv hex: %v", ErrMalformedCiphertext, err)
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: invalid ciphertext hex: %v", ErrMalformedCiphertext, err)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformedCiphertext, aes.BlockSize, len(iv))
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a positive multiple of the block size", ErrDecryptionFailed, len(ciphertext))
	}

	key := DeriveKey(secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if !utf8.Valid(unpadded) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrDecryptionFailed)
	}

	return string(unpadded), nil
}

// Fingerprint returns the hex SHA-256 digest of plaintext: 64 hex
// characters, deterministic, one-way. Used to detect duplicate secrets
// without storing them in recoverable form.
func Fingerprint(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// pkcs7Pad appends PKCS#7 padding up to the block size.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// pkcs7Unpad strips and validates PKCS#7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, errors.New("invalid padding length")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("inconsistent padding bytes")
		}
	}
	return data[:len(data)-padLen], nil
}
