package service

import (
	"crypto/rand"
	"encoding/base64"
)

// newToken returns a 32-byte cryptographically random token, URL-safe so it
// can sit in an email link path segment.
func newToken() string {
	b := make([]byte, 32)
	// rand.Read never fails on supported platforms (it panics internally
	// if the kernel entropy source is broken).
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
