package telemetry

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "", MaskValue(""))
	assert.Equal(t, "****", MaskValue("abc"))
	assert.Equal(t, "****5678", MaskValue("key_12345678"))
}

func TestMaskHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-API-Key", "key_12345678")
	h.Set("X-TransVoucher-Signature", "sha256=abcdef0123")
	h.Set("Content-Type", "application/json")

	masked := MaskHeaders(h)
	assert.Equal(t, "****5678", masked["X-Api-Key"])
	assert.Equal(t, "****0123", masked["X-Transvoucher-Signature"])
	assert.Equal(t, "application/json", masked["Content-Type"])
}

func TestMaskJSON(t *testing.T) {
	input := map[string]any{
		"customer_email": "jane@example.com",
		"amount":         100.0,
		"customer_details": map[string]any{
			"phone": "+15550001234",
			"name":  "Jane",
		},
	}

	masked := MaskJSON(input)
	assert.Equal(t, "****.com", masked["customer_email"])
	assert.Equal(t, 100.0, masked["amount"])

	nested := masked["customer_details"].(map[string]any)
	assert.Equal(t, "****1234", nested["phone"])
	assert.Equal(t, "Jane", nested["name"])
	assert.Equal(t, "jane@example.com", input["customer_email"])
}
