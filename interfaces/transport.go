package interfaces

import (
	"context"
	"net/url"
)

// Transport defines the contract for authenticated calls to the TransVoucher API.
// Paths are relative to the configured base URL. Every method returns the
// decoded JSON object of a 2xx response or an *apierror.Error.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) (map[string]any, error)
	Post(ctx context.Context, path string, body any) (map[string]any, error)
	Put(ctx context.Context, path string, body any) (map[string]any, error)
	Delete(ctx context.Context, path string) (map[string]any, error)
}
