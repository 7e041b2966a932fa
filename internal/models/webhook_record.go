package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// WebhookRecord is a verified webhook delivery as stored by the gateway.
type WebhookRecord struct {
	ID            string          `json:"id"`
	EventType     string          `json:"event_type"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PayloadHash   string          `json:"payload_hash"`
	Payload       json.RawMessage `json:"payload"`
	ReceivedAt    time.Time       `json:"received_at"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
}

// LedgerEntry books one completed payment.
type LedgerEntry struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Balance is the settled total for one currency.
type Balance struct {
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Entries   int64           `json:"entries"`
	UpdatedAt time.Time       `json:"updated_at"`
}
