package interfaces

import (
	"context"
	"time"

	"github.com/akylbek/transvoucher-go/internal/models"
)

// WebhookEventRepository defines the contract for webhook delivery storage
type WebhookEventRepository interface {
	// Save stores a record and reports false when the same payload was
	// already stored.
	Save(ctx context.Context, record *models.WebhookRecord) (bool, error)
	GetByID(ctx context.Context, id string) (*models.WebhookRecord, error)
	MarkPublished(ctx context.Context, id string) error
	// ListUnpublished returns records received before cutoff that were
	// never forwarded, oldest first.
	ListUnpublished(ctx context.Context, cutoff time.Time, limit int) ([]*models.WebhookRecord, error)
}

// LedgerRepository defines the contract for settlement bookkeeping
type LedgerRepository interface {
	// Record books entry and reports false when the transaction was
	// already booked.
	Record(ctx context.Context, entry *models.LedgerEntry) (bool, error)
	GetBalance(ctx context.Context, currency string) (*models.Balance, error)
}
