package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidSignature = errors.New("invalid_signature")

// Verifier checks processor webhook signatures. The HMAC is computed over
// the exact raw body bytes; re-serializing a parsed body would break the
// comparison whenever key order or whitespace differs.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify compares the hex-encoded HMAC-SHA256 of body against signature.
// An unconfigured secret rejects every webhook.
func (v *Verifier) Verify(body []byte, signature string) error {
	if v == nil || len(v.secret) == 0 {
		return ErrInvalidSignature
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
