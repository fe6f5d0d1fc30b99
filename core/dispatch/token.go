package dispatch

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenBytes yields 12 hex characters, short enough for an SMS link. At the
// expected donor-pool scale collision probability is negligible; the token
// store's uniqueness constraint is the backstop.
const tokenBytes = 6

// NewToken returns a short random token string.
func NewToken() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(b)
}
