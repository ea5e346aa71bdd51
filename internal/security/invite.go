package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// MinInviteSecretBytes is the floor on invite secret entropy. Invitation
// tokens are bearer credentials reachable by URL; they must resist
// enumeration.
const MinInviteSecretBytes = 32

// NewInviteSecret returns a URL-safe random secret of at least
// MinInviteSecretBytes bytes of entropy.
func NewInviteSecret(numBytes int) (string, error) {
	if numBytes < MinInviteSecretBytes {
		numBytes = MinInviteSecretBytes
	}
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
