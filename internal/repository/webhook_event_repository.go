package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/akylbek/transvoucher-go/internal/models"
)

type WebhookEventRepository struct {
	db *sql.DB
}

func NewWebhookEventRepository(db *sql.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS webhook_events (
			id UUID PRIMARY KEY,
			event_type VARCHAR(100) NOT NULL,
			transaction_id VARCHAR(255),
			payload_hash CHAR(64) NOT NULL UNIQUE,
			payload JSONB NOT NULL,
			received_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			published_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_events_transaction_id ON webhook_events(transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_events_unpublished ON webhook_events(received_at) WHERE published_at IS NULL`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *WebhookEventRepository) Save(ctx context.Context, record *models.WebhookRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (id, event_type, transaction_id, payload_hash, payload, received_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		ON CONFLICT (payload_hash) DO NOTHING
	`, record.ID, record.EventType, record.TransactionID, record.PayloadHash,
		[]byte(record.Payload), record.ReceivedAt)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

const selectWebhookEvent = `
	SELECT id, event_type, transaction_id, payload_hash, payload, received_at, published_at
	FROM webhook_events`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebhookRecord(row rowScanner) (*models.WebhookRecord, error) {
	var record models.WebhookRecord
	var transactionID sql.NullString
	var publishedAt sql.NullTime
	var payload []byte

	if err := row.Scan(&record.ID, &record.EventType, &transactionID, &record.PayloadHash,
		&payload, &record.ReceivedAt, &publishedAt); err != nil {
		return nil, err
	}

	record.TransactionID = transactionID.String
	record.Payload = payload
	if publishedAt.Valid {
		record.PublishedAt = &publishedAt.Time
	}
	return &record, nil
}

func (r *WebhookEventRepository) GetByID(ctx context.Context, id string) (*models.WebhookRecord, error) {
	record, err := scanWebhookRecord(r.db.QueryRowContext(ctx, selectWebhookEvent+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *WebhookEventRepository) ListUnpublished(ctx context.Context, cutoff time.Time, limit int) ([]*models.WebhookRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectWebhookEvent+`
		WHERE published_at IS NULL AND received_at < $1
		ORDER BY received_at
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.WebhookRecord
	for rows.Next() {
		record, err := scanWebhookRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *WebhookEventRepository) MarkPublished(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE webhook_events SET published_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	return err
}
