package membership

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// ApiKeySecretPrefix marks issued secrets so they are recognizable in
// configuration files and leak scanners.
const ApiKeySecretPrefix = "mhk_"

const apiKeySecretBytes = 32

// Secrets are 256-bit random values, so bcrypt's default cost is plenty;
// password-grade cost would only slow down per-request verification.
const apiKeyHashCost = bcrypt.DefaultCost

// ErrNoEmptyString is returned when asked to hash an empty secret.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput)

// GenerateApiKeySecret returns a new high-entropy plaintext secret. The
// caller sees this value exactly once; only its hashes are persisted.
func GenerateApiKeySecret() (string, error) {
	buf := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate api key secret")
	}
	return ApiKeySecretPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashApiKeySecret will generate a one-way hash of the secret for storage.
func HashApiKeySecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(secret), apiKeyHashCost)
	return string(h), err
}

// CompareApiKeySecretAndHash will validate the given plaintext secret
// against the stored hash.
func CompareApiKeySecretAndHash(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidApiKey
		}
		return err
	}
	return nil
}

// ApiKeyFingerprint returns the SHA-256 digest of the secret, hex encoded.
// Unlike the bcrypt hash it is deterministic, which makes it usable as the
// indexed lookup column; verification still goes through the bcrypt hash.
func ApiKeyFingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
