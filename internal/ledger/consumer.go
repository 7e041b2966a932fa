package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/akylbek/transvoucher-go/internal/interfaces"
	"github.com/akylbek/transvoucher-go/internal/models"
	"github.com/akylbek/transvoucher-go/internal/telemetry"
	"github.com/akylbek/transvoucher-go/webhook"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ErrSkip marks a message that can never be booked and should be committed.
var ErrSkip = errors.New("message skipped")

// Consumer books payment.completed webhook events into the ledger.
type Consumer struct {
	reader       MessageReader
	repo         interfaces.LedgerRepository
	retryBackoff time.Duration
	maxBackoff   time.Duration
}

func NewConsumer(reader MessageReader, repo interfaces.LedgerRepository) *Consumer {
	return &Consumer{
		reader:       reader,
		repo:         repo,
		retryBackoff: 500 * time.Millisecond,
		maxBackoff:   30 * time.Second,
	}
}

// NewKafkaReader subscribes to the completed-payment topic.
func NewKafkaReader(brokers []string, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "settlement-ledger",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}

// Run consumes until ctx is canceled. Offsets are committed only after a
// message is booked or skipped. A failed booking is retried in place: the
// group offset is per partition, so committing a later message would
// acknowledge the failed one as well.
func (c *Consumer) Run(ctx context.Context) error {
	telemetry.Logger.Info("Started consuming completed payment events")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			telemetry.Logger.Error("Error reading message from Kafka", zap.Error(err))
			continue
		}

		if err := c.book(ctx, msg); err != nil {
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			telemetry.Logger.Error("Failed to commit offset", zap.Error(err))
		}
	}
}

// book calls Handle until the message is booked or skipped. It only
// returns an error once ctx is done.
func (c *Consumer) book(ctx context.Context, msg kafka.Message) error {
	backoff := c.retryBackoff
	for attempt := 1; ; attempt++ {
		err := c.Handle(ctx, msg.Value)
		if err == nil || errors.Is(err, ErrSkip) {
			return nil
		}

		telemetry.Logger.Error("Error booking payment, retrying",
			zap.String("key", string(msg.Key)),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

// Handle books one event body.
func (c *Consumer) Handle(ctx context.Context, value []byte) error {
	entry, err := EntryFromEvent(value)
	if err != nil {
		telemetry.Logger.Warn("Skipping unbookable event", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSkip, err)
	}

	booked, err := c.repo.Record(ctx, entry)
	if err != nil {
		telemetry.LedgerEntriesRecorded.WithLabelValues(entry.Currency, "error").Inc()
		return err
	}
	if !booked {
		telemetry.LedgerEntriesRecorded.WithLabelValues(entry.Currency, "duplicate").Inc()
		telemetry.Logger.Info("Payment already booked", zap.String("transaction_id", entry.TransactionID))
		return nil
	}

	telemetry.LedgerEntriesRecorded.WithLabelValues(entry.Currency, "booked").Inc()
	telemetry.Logger.Info("Recorded ledger entry",
		zap.String("transaction_id", entry.TransactionID),
		zap.String("amount", entry.Amount.String()),
		zap.String("currency", entry.Currency),
		zap.String("balance", entry.Balance.String()),
	)
	return nil
}

// EntryFromEvent turns a payment.completed webhook body into a ledger entry.
func EntryFromEvent(value []byte) (*models.LedgerEntry, error) {
	// The gateway verified the signature before publishing.
	event, err := webhook.NewVerifier("").ParsePayload(value)
	if err != nil {
		return nil, err
	}
	if !event.IsPaymentCompleted() {
		return nil, fmt.Errorf("unexpected event %q", event.EventType())
	}

	payment, err := event.Payment()
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.Key() == "" {
		return nil, errors.New("event has no transaction id")
	}
	if payment.Amount == nil || !payment.Amount.IsPositive() {
		return nil, errors.New("event has no positive amount")
	}
	if payment.Currency == nil || *payment.Currency == "" {
		return nil, errors.New("event has no currency")
	}

	return &models.LedgerEntry{
		TransactionID: payment.Key(),
		Currency:      strings.ToUpper(*payment.Currency),
		Amount:        payment.Amount.Decimal,
	}, nil
}

