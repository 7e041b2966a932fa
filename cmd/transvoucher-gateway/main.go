package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	transvoucher "github.com/akylbek/transvoucher-go"
	sdkconfig "github.com/akylbek/transvoucher-go/config"
	"github.com/akylbek/transvoucher-go/internal/api"
	"github.com/akylbek/transvoucher-go/internal/cache"
	"github.com/akylbek/transvoucher-go/internal/config"
	"github.com/akylbek/transvoucher-go/internal/interfaces"
	"github.com/akylbek/transvoucher-go/internal/publisher"
	"github.com/akylbek/transvoucher-go/internal/repository"
	"github.com/akylbek/transvoucher-go/internal/telemetry"
)

func main() {
	// Initialize telemetry
	if err := telemetry.InitTelemetry("transvoucher-gateway"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting TransVoucher Gateway")

	cfg := config.Load("8081")

	// TransVoucher client
	client, err := transvoucher.New(sdkconfig.Config{}, transvoucher.WithLogger(telemetry.Logger))
	if err != nil {
		telemetry.Logger.Fatal("Failed to configure TransVoucher client", zap.Error(err))
	}
	if client.Config().WebhookSecret == "" {
		telemetry.Logger.Warn("TRANSVOUCHER_WEBHOOK_SECRET not set, webhook deliveries will be rejected")
	}
	telemetry.Logger.Info("TransVoucher client configured",
		zap.String("environment", client.Config().Environment),
		zap.String("base_url", client.Config().BaseURL),
		zap.String("api_key", telemetry.MaskValue(client.Config().APIKey)),
	)

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	webhookRepo := repository.NewWebhookEventRepository(db)
	if err := webhookRepo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	store := newStore(cfg)

	// Event sinks
	fanout := publisher.NewFanout()
	if cfg.HasSink("kafka") {
		fanout.Add("kafka", publisher.NewKafkaPublisher(cfg.KafkaBrokers))
	}
	if cfg.HasSink("nats") {
		nc, err := publisher.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		fanout.Add("nats", nc)
	}
	if fanout.Len() == 0 {
		telemetry.Logger.Warn("No event sinks configured, webhook events will only be stored")
	}
	defer fanout.Close()

	deps := api.GatewayDeps{
		Payments:       client.Payments,
		Currencies:     client.Currencies,
		Networks:       client.Networks,
		Commodities:    client.Commodities,
		Verifier:       client.Webhook(),
		WebhookRepo:    webhookRepo,
		Store:          store,
		Publisher:      fanout,
		TopicPrefix:    cfg.TopicPrefix,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	r := api.NewGatewayRouter(deps)

	// Re-publish deliveries whose first publish failed
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()
	go api.NewWebhookHandler(deps).RunRelay(relayCtx, cfg.RelayInterval)

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("TransVoucher Gateway starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	stopRelay()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}

// newStore connects to Redis, or keeps state in process when REDIS_URL is "memory".
func newStore(cfg *config.Config) interfaces.IdempotencyStore {
	if cfg.RedisURL == "memory" {
		telemetry.Logger.Warn("Using in-memory idempotency store")
		return cache.NewMemoryStore()
	}

	redisStore := cache.NewRedisStore(redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisStore.Ping(ctx); err != nil {
		telemetry.Logger.Warn("Redis not reachable at startup", zap.String("addr", cfg.RedisURL), zap.Error(err))
	}
	return redisStore
}
