// Package signature authenticates inbound webhook payloads.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Verify reports whether providedBase64 is the base64-encoded
// HMAC-SHA256 digest of body under secret. It fails closed: a missing
// secret or signature, or any mismatch, yields false. The comparison
// is constant time. No logging happens here; callers must not log the
// secret or the computed digest either.
func Verify(secret string, body []byte, providedBase64 string) bool {
	if secret == "" || providedBase64 == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(providedBase64))
}
