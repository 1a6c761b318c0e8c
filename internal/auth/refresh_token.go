package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const refreshSecretBytes = 32

// issuedRefreshToken pairs the client-facing opaque token with the state
// persisted server-side. The plaintext secret exists only in Plaintext.
type issuedRefreshToken struct {
	ID         uuid.UUID
	Plaintext  string
	SecretHash string
}

// newRefreshToken mints an opaque token of the form "<id>.<secret>" where
// the secret half is random and only its hash is stored.
func newRefreshToken() (issuedRefreshToken, error) {
	id := uuid.New()
	secret := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return issuedRefreshToken{}, fmt.Errorf("generate refresh secret: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(secret)
	return issuedRefreshToken{
		ID:         id,
		Plaintext:  fmt.Sprintf("%s.%s", id, encoded),
		SecretHash: hashRefreshSecret(encoded),
	}, nil
}

// splitRefreshToken recovers the token id and secret halves from the
// client-supplied string.
func splitRefreshToken(token string) (uuid.UUID, string, error) {
	parts := strings.SplitN(strings.TrimSpace(token), ".", 2)
	if len(parts) != 2 || parts[1] == "" {
		return uuid.Nil, "", fmt.Errorf("malformed refresh token")
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("malformed refresh token id")
	}
	return id, parts[1], nil
}

func hashRefreshSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// secretMatchesHash compares in constant time.
func secretMatchesHash(secret, storedHash string) bool {
	computed := hashRefreshSecret(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
