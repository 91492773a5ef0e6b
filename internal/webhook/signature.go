package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature verifies the HMAC-SHA256 signature of a webhook payload.
// The payload must be the exact raw bytes received: re-encoding can change
// the byte content and invalidate a legitimate signature.
//
// The header carries "sha256=<hex-encoded-hmac>". The full expected header
// value is compared in constant time; an empty secret or header always
// fails.
func VerifySignature(payload []byte, signatureHeader, secret string) bool {
	if secret == "" || signatureHeader == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
