package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/akylbek/transvoucher-go/apierror"
	"github.com/akylbek/transvoucher-go/config"
	"github.com/akylbek/transvoucher-go/models"
)

const tracerName = "github.com/akylbek/transvoucher-go/transport"

// HTTPClient is the net/http implementation of interfaces.Transport.
// It never retries.
type HTTPClient struct {
	baseURL   string
	apiKey    string
	apiSecret string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
	tracer    trace.Tracer
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying client, timeouts included.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *HTTPClient) {
		if l != nil {
			h.logger = l
		}
	}
}

// New builds a client from a resolved configuration.
func New(cfg config.Config, opts ...Option) *HTTPClient {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	h := &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: cfg.ConnectTimeout,
			},
		},
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPClient) Get(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	return h.do(ctx, http.MethodGet, path, query, nil)
}

func (h *HTTPClient) Post(ctx context.Context, path string, body any) (map[string]any, error) {
	return h.do(ctx, http.MethodPost, path, nil, body)
}

func (h *HTTPClient) Put(ctx context.Context, path string, body any) (map[string]any, error) {
	return h.do(ctx, http.MethodPut, path, nil, body)
}

func (h *HTTPClient) Delete(ctx context.Context, path string) (map[string]any, error) {
	return h.do(ctx, http.MethodDelete, path, nil, nil)
}

func (h *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any) (map[string]any, error) {
	endpoint := endpointLabel(path)
	ctx, span := h.tracer.Start(ctx, "transvoucher "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("transvoucher.endpoint", endpoint),
		),
	)
	defer span.End()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, apierror.InvalidRequest(fmt.Sprintf("Unable to encode request body: %v", err))
		}
		reader = bytes.NewReader(raw)
	}

	target := h.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, apierror.Network("Unable to build request: "+err.Error(), err)
	}
	req.Header.Set("X-API-Key", h.apiKey)
	req.Header.Set("X-API-Secret", h.apiSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)

	start := time.Now()
	resp, err := h.client.Do(req)
	elapsed := time.Since(start)
	requestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(method, endpoint, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "connection failed")
		h.logger.Warn("TransVoucher API unreachable",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.String("api_key", maskSecret(h.apiKey)),
			zap.Error(err),
		)
		return nil, apierror.Network("Unable to connect to TransVoucher API: "+err.Error(), err)
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.Network("Request failed: "+err.Error(), err)
	}

	h.logger.Debug("TransVoucher API response",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
		zap.String("api_key", maskSecret(h.apiKey)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorForStatus(resp.StatusCode, raw)
		span.SetStatus(codes.Error, apiErr.Message)
		return nil, apiErr
	}

	result, apiErr := decodeSuccess(raw)
	if apiErr != nil {
		span.SetStatus(codes.Error, apiErr.Message)
		return nil, apiErr.WithStatus(resp.StatusCode)
	}
	return result, nil
}

// errorForStatus maps a non-2xx response to the error taxonomy.
func errorForStatus(status int, body []byte) *apierror.Error {
	msg := serverMessage(status, body)

	var err *apierror.Error
	switch status {
	case http.StatusUnauthorized:
		err = apierror.Authentication(msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		err = apierror.InvalidRequest(msg)
	case http.StatusNotFound:
		err = apierror.InvalidRequest("Resource not found")
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		err = apierror.API("Server error: " + msg)
	default:
		err = apierror.API(fmt.Sprintf("HTTP %d: %s", status, msg))
	}
	return err.WithStatus(status)
}

func serverMessage(status int, body []byte) string {
	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		if m, ok := payload["message"].(string); ok && m != "" {
			return m
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Unknown error"
}

func decodeSuccess(body []byte) (map[string]any, *apierror.Error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	payload, err := models.DecodeObject(body)
	if err != nil {
		return nil, apierror.API("Invalid JSON response from API")
	}

	if flag, ok := payload["error"].(bool); ok && flag {
		msg, _ := payload["message"].(string)
		if msg == "" {
			msg = "Unknown API error"
		}
		return nil, apierror.API(msg)
	}
	return payload, nil
}

// endpointLabel keeps at most the first two static path segments so ids
// never reach metric labels.
func endpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	kept := make([]string, 0, 2)
	for _, s := range segments {
		if len(kept) == 2 || !isStaticSegment(s) {
			break
		}
		kept = append(kept, s)
	}
	return "/" + strings.Join(kept, "/")
}

func isStaticSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

func maskSecret(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
