package telemetry

import (
	"net/http"
	"strings"
)

var sensitiveKeys = []string{
	"secret",
	"token",
	"api_key",
	"signature",
	"email",
	"phone",
}

var sensitiveHeaders = map[string]bool{
	"x-api-key":                true,
	"x-api-secret":             true,
	"x-transvoucher-signature": true,
	"authorization":            true,
}

// MaskValue keeps only the last 4 characters.
func MaskValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// MaskHeaders returns a flattened copy of headers with credentials masked.
func MaskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for key, values := range headers {
		joined := strings.Join(values, ",")
		if sensitiveHeaders[strings.ToLower(key)] {
			joined = MaskValue(joined)
		}
		masked[key] = joined
	}
	return masked
}

// MaskJSON returns a deep copy of payload with sensitive string values masked.
func MaskJSON(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case map[string]any:
			out[key] = MaskJSON(v)
		case string:
			if isSensitiveKey(key) {
				out[key] = MaskValue(v)
			} else {
				out[key] = v
			}
		default:
			out[key] = v
		}
	}
	return out
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
