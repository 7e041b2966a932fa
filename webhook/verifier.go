package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/akylbek/transvoucher-go/apierror"
	"github.com/akylbek/transvoucher-go/models"
)

// SignatureHeader carries the payload signature on webhook deliveries.
const SignatureHeader = "X-TransVoucher-Signature"

const signaturePrefix = "sha256="

// Verifier authenticates webhook deliveries with HMAC-SHA256 over the raw body.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifySignature reports whether signature matches payload. The comparison
// runs in constant time; a leading "sha256=" is ignored.
func (v *Verifier) VerifySignature(payload []byte, signature string) (bool, error) {
	if len(v.secret) == 0 {
		return false, apierror.Configuration("Webhook secret is required for signature verification")
	}
	if signature == "" {
		return false, nil
	}

	signature = strings.TrimPrefix(signature, signaturePrefix)
	expected := v.digest(payload)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// Sign returns the header value a sender would attach to payload.
func (v *Verifier) Sign(payload []byte) string {
	return signaturePrefix + v.digest(payload)
}

// ParsePayload decodes a webhook body. It does not check the signature.
func (v *Verifier) ParsePayload(payload []byte) (models.WebhookEvent, error) {
	event, err := models.DecodeObject(payload)
	if err != nil {
		return nil, apierror.MalformedPayload("Invalid JSON in webhook payload")
	}
	return models.WebhookEvent(event), nil
}

// VerifyAndParse checks the signature, then decodes the body.
func (v *Verifier) VerifyAndParse(payload []byte, signature string) (models.WebhookEvent, error) {
	ok, err := v.VerifySignature(payload, signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierror.SignatureMismatch("Invalid webhook signature")
	}
	return v.ParsePayload(payload)
}

func (v *Verifier) digest(payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
