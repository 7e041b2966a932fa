package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akylbek/transvoucher-go/internal/handlers"
	"github.com/akylbek/transvoucher-go/internal/interfaces"
	"github.com/akylbek/transvoucher-go/internal/middleware"
	"github.com/akylbek/transvoucher-go/internal/telemetry"
	"github.com/akylbek/transvoucher-go/webhook"
)

// GatewayDeps carries everything the gateway routes need.
type GatewayDeps struct {
	Payments       interfaces.PaymentGateway
	Currencies     interfaces.CurrencyLister
	Networks       interfaces.NetworkLister
	Commodities    interfaces.CommodityLister
	Verifier       *webhook.Verifier
	WebhookRepo    interfaces.WebhookEventRepository
	Store          interfaces.IdempotencyStore
	Publisher      interfaces.EventPublisher
	TopicPrefix    string
	IdempotencyTTL time.Duration
}

func newEngine(service string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": service})
	})

	return r
}

func NewGatewayRouter(deps GatewayDeps) *gin.Engine {
	r := newEngine("transvoucher-gateway")

	// Payment routes
	paymentHandler := handlers.NewPaymentHandler(deps.Payments, deps.Store, deps.IdempotencyTTL)
	payments := r.Group("/payments")
	{
		payments.POST("", middleware.IdempotencyMiddleware(deps.Store), paymentHandler.CreatePayment)
		payments.GET("", paymentHandler.ListPayments)
		payments.GET("/:id", paymentHandler.GetPayment)
	}
	r.GET("/payment-links/:id", paymentHandler.GetPaymentLink)
	r.GET("/conversion-rates/:network/:commodity/:fiat", paymentHandler.GetConversionRate)

	// Reference data
	referenceHandler := handlers.NewReferenceHandler(deps.Currencies, deps.Networks, deps.Commodities)
	r.GET("/currencies", referenceHandler.ListCurrencies)
	r.GET("/networks", referenceHandler.ListNetworks)
	r.GET("/commodities", referenceHandler.ListCommodities)

	// Webhooks
	webhookHandler := NewWebhookHandler(deps)
	r.POST("/webhooks/transvoucher", webhookHandler.HandleTransVoucher)
	r.GET("/webhooks/events/:id", webhookHandler.GetEvent)

	return r
}

// NewWebhookHandler builds the webhook handler the gateway routes and the
// relay share.
func NewWebhookHandler(deps GatewayDeps) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(deps.Verifier, deps.WebhookRepo, deps.Store, deps.Publisher, deps.TopicPrefix)
}

func NewLedgerRouter(repo interfaces.LedgerRepository) *gin.Engine {
	r := newEngine("settlement-ledger")

	ledgerHandler := handlers.NewLedgerHandler(repo)
	r.GET("/ledger/:currency/balance", ledgerHandler.GetBalance)

	return r
}
