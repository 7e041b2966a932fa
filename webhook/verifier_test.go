package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/transvoucher-go/apierror"
)

const (
	testSecret  = "whsec_test_secret"
	testPayload = `{"type":"payment.completed","data":{"transaction_id":123,"amount":100,"currency":"USD"}}`
)

func hexHMAC(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsBothForms(t *testing.T) {
	v := NewVerifier(testSecret)
	sig := hexHMAC(testSecret, testPayload)

	ok, err := v.VerifySignature([]byte(testPayload), sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.VerifySignature([]byte(testPayload), "sha256="+sig)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "sha256="+sig, v.Sign([]byte(testPayload)))
}

func TestVerifySignatureRejectsSingleByteMutations(t *testing.T) {
	v := NewVerifier(testSecret)
	sig := hexHMAC(testSecret, testPayload)

	for i := range testPayload {
		mutated := []byte(testPayload)
		mutated[i] ^= 0x01
		ok, err := v.VerifySignature(mutated, sig)
		require.NoError(t, err)
		assert.False(t, ok, "payload mutated at byte %d", i)
	}

	for i := range sig {
		mutated := []byte(sig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		ok, err := v.VerifySignature([]byte(testPayload), string(mutated))
		require.NoError(t, err)
		assert.False(t, ok, "signature mutated at byte %d", i)
	}
}

func TestVerifySignatureEmptyHeader(t *testing.T) {
	ok, err := NewVerifier(testSecret).VerifySignature([]byte(testPayload), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySignatureRequiresSecret(t *testing.T) {
	_, err := NewVerifier("").VerifySignature([]byte(testPayload), "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrConfiguration))
	assert.Equal(t, "Webhook secret is required for signature verification", err.Error())
}

func TestParsePayload(t *testing.T) {
	v := NewVerifier(testSecret)

	event, err := v.ParsePayload([]byte(testPayload))
	require.NoError(t, err)
	assert.Equal(t, "payment.completed", event.EventType())
	assert.Equal(t, "USD", event.EventData()["currency"])

	for _, body := range []string{`{invalid`, `[1,2]`, `null`, ``} {
		_, err := v.ParsePayload([]byte(body))
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, apierror.ErrMalformedPayload))
		assert.Equal(t, "Invalid JSON in webhook payload", err.Error())
	}
}

func TestVerifyAndParse(t *testing.T) {
	v := NewVerifier(testSecret)

	event, err := v.VerifyAndParse([]byte(testPayload), v.Sign([]byte(testPayload)))
	require.NoError(t, err)
	assert.True(t, event.IsPaymentCompleted())

	_, err = v.VerifyAndParse([]byte(testPayload), "sha256=deadbeef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrSignatureMismatch))
	assert.Equal(t, "Invalid webhook signature", err.Error())

	bad := []byte(`not json`)
	_, err = v.VerifyAndParse(bad, v.Sign(bad))
	assert.True(t, errors.Is(err, apierror.ErrMalformedPayload))
}
