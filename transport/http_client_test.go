package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/akylbek/transvoucher-go/apierror"
	"github.com/akylbek/transvoucher-go/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.Config{
		APIKey:         "key_12345678",
		APISecret:      "secret_abcdefgh",
		BaseURL:        srv.URL + "/v1.0",
		Timeout:        5 * time.Second,
		ConnectTimeout: time.Second,
		UserAgent:      "test-agent/1.0",
	}, opts...)
}

func TestRequestCarriesAuthHeadersAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1.0/payment/create", r.URL.Path)
		assert.Equal(t, "key_12345678", r.Header.Get("X-API-Key"))
		assert.Equal(t, "secret_abcdefgh", r.Header.Get("X-API-Secret"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"amount": 10}`, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success": true, "data": {"transaction_id": 1}}`))
	})

	resp, err := client.Post(context.Background(), "/payment/create", map[string]any{"amount": 10})
	require.NoError(t, err)
	assert.Equal(t, true, resp["success"])
	assert.Contains(t, resp, "data")
}

func TestGetEncodesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/payment/list", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"data": {}}`))
	})

	_, err := client.Get(context.Background(), "payment/list", url.Values{"limit": {"10"}, "status": {"pending"}})
	require.NoError(t, err)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status  int
		body    string
		kind    apierror.Kind
		message string
	}{
		{401, `{"message": "Invalid API key"}`, apierror.KindAuthentication, "Invalid API key"},
		{400, `{"message": "Amount too low"}`, apierror.KindInvalidRequest, "Amount too low"},
		{422, `{"message": "Currency unsupported"}`, apierror.KindInvalidRequest, "Currency unsupported"},
		{404, `{"message": "No such payment"}`, apierror.KindInvalidRequest, "Resource not found"},
		{500, `{"message": "boom"}`, apierror.KindAPI, "Server error: boom"},
		{502, ``, apierror.KindAPI, "Server error: Bad Gateway"},
		{503, `not json`, apierror.KindAPI, "Server error: Service Unavailable"},
		{504, `{"message": "slow"}`, apierror.KindAPI, "Server error: slow"},
		{418, `{"message": "teapot"}`, apierror.KindAPI, "HTTP 418: teapot"},
		{429, `{}`, apierror.KindAPI, "HTTP 429: Too Many Requests"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.Get(context.Background(), "/payment/status/1", nil)
			require.Error(t, err)

			var apiErr *apierror.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.kind, apiErr.Kind)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Equal(t, tc.status, apiErr.StatusCode)
		})
	}
}

func TestSuccessBodyProblems(t *testing.T) {
	cases := map[string]struct {
		body    string
		message string
	}{
		"invalid json":       {`{"data":`, "Invalid JSON response from API"},
		"array body":         {`[1, 2]`, "Invalid JSON response from API"},
		"null body":          {`null`, "Invalid JSON response from API"},
		"error flag":         {`{"error": true, "message": "Merchant disabled"}`, "Merchant disabled"},
		"error flag no text": {`{"error": true}`, "Unknown API error"},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.Get(context.Background(), "/currencies", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apierror.ErrAPI))
			assert.Equal(t, tc.message, err.Error())
		})
	}
}

func TestEmptySuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := client.Delete(context.Background(), "/payment/1")
	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestErrorFalseIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": false, "data": []}`))
	})

	resp, err := client.Put(context.Background(), "/payment/1", map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Equal(t, false, resp["error"])
}

func TestConnectionFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := New(config.Config{APIKey: "k", APISecret: "s", BaseURL: base, Timeout: time.Second, ConnectTimeout: time.Second})

	_, err := client.Get(context.Background(), "/currencies", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrNetwork))
	assert.True(t, strings.HasPrefix(err.Error(), "Unable to connect to TransVoucher API: "))
	assert.Equal(t, 0, apierror.StatusCode(err))
}

func TestCanceledContextIsNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "/currencies", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrNetwork))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLogsMaskCredentials(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}, WithLogger(zap.New(core)))

	_, err := client.Get(context.Background(), "/networks", nil)
	require.NoError(t, err)

	entries := logs.FilterMessage("TransVoucher API response").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "****5678", fields["api_key"])
	assert.Equal(t, "/networks", fields["endpoint"])
}

func TestEndpointLabel(t *testing.T) {
	cases := map[string]string{
		"/payment/create":                       "/payment/create",
		"/payment/status/tx_123":                "/payment/status",
		"payment-link/status/abc":               "/payment-link/status",
		"/conversion-rate/POL/USDT/USD/card":    "/conversion-rate",
		"/currencies":                           "/currencies",
		"/payment/status/12345/extra/segments":  "/payment/status",
	}
	for in, want := range cases {
		assert.Equal(t, want, endpointLabel(in), in)
	}
}
