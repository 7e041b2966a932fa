package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akylbek/transvoucher-go/apierror"
	"github.com/akylbek/transvoucher-go/internal/interfaces"
	"github.com/akylbek/transvoucher-go/internal/repository"
	gwmodels "github.com/akylbek/transvoucher-go/internal/models"
	"github.com/akylbek/transvoucher-go/internal/telemetry"
	"github.com/akylbek/transvoucher-go/models"
	"github.com/akylbek/transvoucher-go/webhook"
)

const (
	webhookDedupeTTL = 72 * time.Hour
	relayBatchSize   = 100
)

// WebhookHandler ingests TransVoucher deliveries: verify, de-duplicate,
// store, then forward to the message bus.
type WebhookHandler struct {
	verifier    *webhook.Verifier
	repo        interfaces.WebhookEventRepository
	store       interfaces.IdempotencyStore
	publisher   interfaces.EventPublisher
	dispatcher  *webhook.Dispatcher
	topicPrefix string
}

func NewWebhookHandler(verifier *webhook.Verifier, repo interfaces.WebhookEventRepository, store interfaces.IdempotencyStore, publisher interfaces.EventPublisher, topicPrefix string) *WebhookHandler {
	h := &WebhookHandler{
		verifier:    verifier,
		repo:        repo,
		store:       store,
		publisher:   publisher,
		topicPrefix: topicPrefix,
	}

	forward := h.forward
	h.dispatcher = webhook.NewDispatcher().
		On(models.EventPaymentCompleted, forward).
		On(models.EventPaymentFailed, forward).
		On(models.EventPaymentRefunded, forward).
		On(models.EventSettlementProcessed, forward).
		Fallback(func(ctx context.Context, e models.WebhookEvent) error {
			telemetry.Logger.Info("Ignoring unhandled webhook event", zap.String("event", e.EventType()))
			// Nothing to forward. Marking it keeps the relay from retrying it.
			if record := recordFrom(ctx); record != nil {
				return h.repo.MarkPublished(ctx, record.ID)
			}
			return nil
		})
	return h
}

// Topic returns the bus topic for an event type.
func (h *WebhookHandler) Topic(eventType string) string {
	return h.topicPrefix + "." + eventType
}

func (h *WebhookHandler) HandleTransVoucher(c *gin.Context) {
	ctx := c.Request.Context()

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return
	}

	event, err := h.verifier.VerifyAndParse(payload, c.GetHeader(webhook.SignatureHeader))
	if err != nil {
		telemetry.WebhooksReceived.WithLabelValues("unknown", string(apierror.KindOf(err))).Inc()
		telemetry.Logger.Warn("Rejected webhook delivery",
			zap.Any("headers", telemetry.MaskHeaders(c.Request.Header)),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}

	eventType := event.EventType()
	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])
	dedupeKey := "webhook:" + hash

	claimed, err := h.store.SetNX(ctx, dedupeKey, []byte("1"), webhookDedupeTTL)
	if err != nil {
		// Postgres still rejects the duplicate through payload_hash.
		telemetry.Logger.Warn("Webhook dedupe lookup failed", zap.Error(err))
		claimed = true
	}
	if !claimed {
		telemetry.WebhooksReceived.WithLabelValues(eventType, "duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	record := &gwmodels.WebhookRecord{
		ID:          uuid.New().String(),
		EventType:   eventType,
		PayloadHash: hash,
		Payload:     payload,
		ReceivedAt:  time.Now().UTC(),
	}
	if p, err := event.Payment(); err == nil && p != nil {
		record.TransactionID = p.Key()
	}

	inserted, err := h.repo.Save(ctx, record)
	if err != nil {
		_ = h.store.Delete(ctx, dedupeKey)
		telemetry.WebhooksReceived.WithLabelValues(eventType, "error").Inc()
		telemetry.Logger.Error("Failed to store webhook event",
			zap.String("event", eventType),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store webhook event"})
		return
	}
	if !inserted {
		telemetry.WebhooksReceived.WithLabelValues(eventType, "duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	ctx = withRecord(ctx, record)
	if err := h.dispatcher.Dispatch(ctx, event); err != nil {
		// The record stays unpublished and Relay forwards it later.
		telemetry.Logger.Error("Failed to forward webhook event",
			zap.String("event_id", record.ID),
			zap.String("event", eventType),
			zap.Error(err),
		)
	}

	telemetry.WebhooksReceived.WithLabelValues(eventType, "accepted").Inc()
	telemetry.Logger.Info("Webhook event accepted",
		zap.String("event_id", record.ID),
		zap.String("event", eventType),
		zap.String("transaction_id", record.TransactionID),
	)

	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": record.ID})
}

// GetEvent returns a stored delivery by id.
func (h *WebhookHandler) GetEvent(c *gin.Context) {
	record, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Webhook event not found"})
		return
	}
	if err != nil {
		telemetry.Logger.Error("Failed to fetch webhook event", zap.String("event_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch webhook event"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Relay forwards stored deliveries whose publish failed. Records newer than
// minAge are left alone because their request may still be publishing.
func (h *WebhookHandler) Relay(ctx context.Context, minAge time.Duration, limit int) (int, error) {
	records, err := h.repo.ListUnpublished(ctx, time.Now().UTC().Add(-minAge), limit)
	if err != nil {
		return 0, err
	}

	forwarded := 0
	for _, record := range records {
		event, err := h.verifier.ParsePayload(record.Payload)
		if err != nil {
			telemetry.Logger.Error("Stored webhook event is not valid JSON", zap.String("event_id", record.ID), zap.Error(err))
			continue
		}
		if err := h.dispatcher.Dispatch(withRecord(ctx, record), event); err != nil {
			telemetry.Logger.Warn("Relay failed to forward webhook event",
				zap.String("event_id", record.ID),
				zap.String("event", record.EventType),
				zap.Error(err),
			)
			continue
		}
		forwarded++
	}
	return forwarded, nil
}

// RunRelay calls Relay every interval until ctx is canceled.
func (h *WebhookHandler) RunRelay(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := h.Relay(ctx, interval, relayBatchSize)
			if err != nil {
				telemetry.Logger.Error("Failed to list unpublished webhook events", zap.Error(err))
				continue
			}
			if n > 0 {
				telemetry.Logger.Info("Relayed webhook events", zap.Int("count", n))
			}
		}
	}
}

func (h *WebhookHandler) forward(ctx context.Context, event models.WebhookEvent) error {
	record := recordFrom(ctx)
	if record == nil {
		return nil
	}

	if err := h.publisher.Publish(ctx, h.Topic(record.EventType), record.TransactionID, record.Payload); err != nil {
		return err
	}
	return h.repo.MarkPublished(ctx, record.ID)
}

type recordKey struct{}

func withRecord(ctx context.Context, r *gwmodels.WebhookRecord) context.Context {
	return context.WithValue(ctx, recordKey{}, r)
}

func recordFrom(ctx context.Context) *gwmodels.WebhookRecord {
	r, _ := ctx.Value(recordKey{}).(*gwmodels.WebhookRecord)
	return r
}
