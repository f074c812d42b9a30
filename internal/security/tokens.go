package security

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the entropy of a session or refresh token before hex encoding.
// 32 bytes gives a 64-character token; tokens are opaque and only ever
// compared against the sessions store, never parsed.
const TokenBytes = 32

// NewToken returns a high-entropy opaque token from the platform CSPRNG.
// Session and refresh tokens are minted independently; neither is derivable
// from the other.
func NewToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
