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
	"go.uber.org/zap"

	"github.com/akylbek/transvoucher-go/internal/api"
	"github.com/akylbek/transvoucher-go/internal/config"
	"github.com/akylbek/transvoucher-go/internal/ledger"
	"github.com/akylbek/transvoucher-go/internal/repository"
	"github.com/akylbek/transvoucher-go/internal/telemetry"
	"github.com/akylbek/transvoucher-go/models"
)

func main() {
	// Initialize telemetry
	if err := telemetry.InitTelemetry("settlement-ledger"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Settlement Ledger")

	cfg := config.Load("8084")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ledgerRepo := repository.NewLedgerRepository(db)
	if err := ledgerRepo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Start Kafka consumer
	topic := cfg.TopicPrefix + "." + models.EventPaymentCompleted
	reader := ledger.NewKafkaReader(cfg.KafkaBrokers, topic)
	defer reader.Close()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := ledger.NewConsumer(reader, ledgerRepo).Run(consumerCtx); err != nil {
			telemetry.Logger.Error("Consumer stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewLedgerRouter(ledgerRepo),
	}

	go func() {
		telemetry.Logger.Info("Settlement Ledger starting", zap.String("port", cfg.Port), zap.String("topic", topic))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	stopConsumer()
	<-consumerDone

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
