package models

import (
	"fmt"
)

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusExpired   PaymentStatus = "expired"
)

// PaymentStatuses is the set accepted by the list filter, in display order.
var PaymentStatuses = []PaymentStatus{StatusPending, StatusCompleted, StatusFailed, StatusExpired}

// Payment is a server-reported payment snapshot. A nil field was absent
// from the response.
type Payment struct {
	ID                           *Identifier       `json:"id,omitempty"`
	TransactionID                *Identifier       `json:"transaction_id,omitempty"`
	ReferenceID                  *string           `json:"reference_id,omitempty"`
	PaymentURL                   *string           `json:"payment_url,omitempty"`
	Amount                       *Decimal          `json:"amount,omitempty"`
	Currency                     *string           `json:"currency,omitempty"`
	Status                       *PaymentStatus    `json:"status,omitempty"`
	Title                        *string           `json:"title,omitempty"`
	Description                  *string           `json:"description,omitempty"`
	CustomerCommissionPercentage *Decimal          `json:"customer_commission_percentage,omitempty"`
	CreatedAt                    *string           `json:"created_at,omitempty"`
	UpdatedAt                    *string           `json:"updated_at,omitempty"`
	ExpiresAt                    *string           `json:"expires_at,omitempty"`
	PaidAt                       *string           `json:"paid_at,omitempty"`
	CustomerDetails              map[string]string `json:"customer_details,omitempty"`
	Metadata                     map[string]string `json:"metadata,omitempty"`
	PaymentDetails               map[string]any    `json:"payment_details,omitempty"`
	CustomFields                 map[string]any    `json:"custom_fields,omitempty"`
}

// PaymentFromMap builds a Payment from a decoded response object.
func PaymentFromMap(data map[string]any) (*Payment, error) {
	var p Payment
	if err := decodeMap(data, &p); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}
	return &p, nil
}

// ToMap re-serializes the payment. Only present fields are emitted.
func (p *Payment) ToMap() map[string]any {
	return encodeMap(p)
}

// Key returns the transaction id, falling back to the record id.
func (p *Payment) Key() string {
	if p.TransactionID != nil {
		return p.TransactionID.String()
	}
	if p.ID != nil {
		return p.ID.String()
	}
	return ""
}

func (p *Payment) hasStatus(s PaymentStatus) bool {
	return p.Status != nil && *p.Status == s
}

func (p *Payment) IsPending() bool   { return p.hasStatus(StatusPending) }
func (p *Payment) IsCompleted() bool { return p.hasStatus(StatusCompleted) }
func (p *Payment) IsFailed() bool    { return p.hasStatus(StatusFailed) }
func (p *Payment) IsExpired() bool   { return p.hasStatus(StatusExpired) }

// PaymentList is one page of the payment listing.
type PaymentList struct {
	Payments      []Payment `json:"payments"`
	Count         int       `json:"count"`
	HasMore       bool      `json:"has_more"`
	NextPageToken *string   `json:"next_page_token"`
}

// PaymentListFromMap builds a page from the response data object. Count
// falls back to the number of payments when the server omits it.
func PaymentListFromMap(data map[string]any) (*PaymentList, error) {
	var aux struct {
		Payments      []Payment `json:"payments"`
		Count         *int      `json:"count"`
		HasMore       bool      `json:"has_more"`
		NextPageToken *string   `json:"next_page_token"`
	}
	if err := decodeMap(data, &aux); err != nil {
		return nil, fmt.Errorf("decode payment list: %w", err)
	}

	list := &PaymentList{
		Payments:      aux.Payments,
		HasMore:       aux.HasMore,
		NextPageToken: aux.NextPageToken,
	}
	if list.Payments == nil {
		list.Payments = []Payment{}
	}
	if aux.Count != nil {
		list.Count = *aux.Count
	} else {
		list.Count = len(list.Payments)
	}
	return list, nil
}
