package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

var (
	// ErrMissingSignature is returned when the HMAC header is absent
	ErrMissingSignature = errors.New("missing webhook signature")
	// ErrInvalidSignature is returned when the HMAC does not match the body
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// WebhookVerifier checks the X-Shopify-Hmac-Sha256 header of webhook deliveries
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a verifier for the app's shared secret
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Sign returns the base64 HMAC-SHA256 of payload
func (v *WebhookVerifier) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify compares the header against the payload's HMAC in constant time
func (v *WebhookVerifier) Verify(payload []byte, hmacHeader string) error {
	if hmacHeader == "" {
		return ErrMissingSignature
	}
	if len(v.secret) == 0 {
		return ErrInvalidSignature
	}

	expected, err := base64.StdEncoding.DecodeString(hmacHeader)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return ErrInvalidSignature
	}

	return nil
}
