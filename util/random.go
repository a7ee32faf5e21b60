package util

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomString returns a URL-safe random string of length n.
func RandomString(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)[:n]
}
