// Package transvoucher is a client for the TransVoucher payment API.
//
//	client, err := transvoucher.New(config.Config{APIKey: key, APISecret: secret, Environment: "sandbox"})
//	payment, err := client.Payments.Create(ctx, models.CreatePaymentParams{Amount: "100.00", Currency: "USD"})
package transvoucher

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/akylbek/transvoucher-go/config"
	"github.com/akylbek/transvoucher-go/interfaces"
	"github.com/akylbek/transvoucher-go/services"
	"github.com/akylbek/transvoucher-go/transport"
	"github.com/akylbek/transvoucher-go/validator"
	"github.com/akylbek/transvoucher-go/webhook"
)

// Client groups the API services behind one resolved configuration.
type Client struct {
	Payments    *services.PaymentService
	Currencies  *services.CurrencyService
	Networks    *services.NetworkService
	Commodities *services.CommodityService

	cfg     config.Config
	webhook *webhook.Verifier
}

type options struct {
	httpClient *http.Client
	logger     *zap.Logger
	transport  interfaces.Transport
	validator  *validator.PaymentValidator
}

type Option func(*options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransport bypasses the HTTP transport entirely.
func WithTransport(t interfaces.Transport) Option {
	return func(o *options) { o.transport = t }
}

func WithValidator(v *validator.PaymentValidator) Option {
	return func(o *options) { o.validator = v }
}

// New resolves cfg against defaults and the environment and wires the services.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	resolved, err := config.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	t := o.transport
	if t == nil {
		t = transport.New(resolved,
			transport.WithHTTPClient(o.httpClient),
			transport.WithLogger(o.logger),
		)
	}

	return &Client{
		Payments:    services.NewPaymentService(t, o.validator),
		Currencies:  services.NewCurrencyService(t),
		Networks:    services.NewNetworkService(t),
		Commodities: services.NewCommodityService(t),
		cfg:         resolved,
		webhook:     webhook.NewVerifier(resolved.WebhookSecret),
	}, nil
}

// Config returns the resolved configuration.
func (c *Client) Config() config.Config {
	return c.cfg
}

// IsSandbox reports whether the client targets the sandbox API.
func (c *Client) IsSandbox() bool {
	return c.cfg.IsSandbox()
}

// Webhook returns a verifier keyed with the configured webhook secret.
func (c *Client) Webhook() *webhook.Verifier {
	return c.webhook
}
