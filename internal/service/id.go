package service

import (
	"crypto/rand"
	"fmt"
)

// idAlphabet is the 64-symbol URL-safe alphabet used for public invoice ids.
// 8 characters give 64^8 (~2.8e14) possibilities, so collisions are
// negligible at this scale; the store's PRIMARY KEY still backstops the rare
// one and the caller retries with a fresh id.
const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// publicIDLength is the length of public invoice ids.
const publicIDLength = 8

// newPublicID returns a new short public invoice id.
func newPublicID() (string, error) {
	buf := make([]byte, publicIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		// 64 symbols divide 256 evenly, so masking keeps the
		// distribution uniform.
		buf[i] = idAlphabet[b&63]
	}
	return string(buf), nil
}
