package models

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// CreatePaymentParams is the request body for a new payment. Amount is kept
// as the caller's numeric literal so it reaches the API unrounded.
type CreatePaymentParams struct {
	Amount                       json.Number       `json:"amount"`
	Currency                     string            `json:"currency,omitempty"`
	Title                        string            `json:"title,omitempty"`
	Description                  string            `json:"description,omitempty"`
	ReferenceID                  string            `json:"reference_id,omitempty"`
	RedirectURL                  string            `json:"redirect_url,omitempty"`
	SuccessURL                   string            `json:"success_url,omitempty"`
	CancelURL                    string            `json:"cancel_url,omitempty"`
	CloseURL                     string            `json:"close_url,omitempty"`
	CustomerEmail                string            `json:"customer_email,omitempty"`
	CustomerDetails              map[string]string `json:"customer_details,omitempty"`
	Metadata                     map[string]string `json:"metadata,omitempty"`
	Theme                        map[string]string `json:"theme,omitempty"`
	Lang                         string            `json:"lang,omitempty"`
	ExpiresAt                    string            `json:"expires_at,omitempty"`
	CustomFields                 map[string]any    `json:"custom_fields,omitempty"`
	CustomerCommissionPercentage json.Number       `json:"customer_commission_percentage,omitempty"`
}

// ListPaymentsParams filters the payment listing. Empty fields are not sent.
type ListPaymentsParams struct {
	Limit     *int   `json:"limit,omitempty" form:"limit"`
	PageToken string `json:"page_token,omitempty" form:"page_token"`
	Status    string `json:"status,omitempty" form:"status"`
	FromDate  string `json:"from_date,omitempty" form:"from_date"`
	ToDate    string `json:"to_date,omitempty" form:"to_date"`
}

func (p ListPaymentsParams) Query() url.Values {
	q := url.Values{}
	if p.Limit != nil {
		q.Set("limit", strconv.Itoa(*p.Limit))
	}
	if p.PageToken != "" {
		q.Set("page_token", p.PageToken)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.FromDate != "" {
		q.Set("from_date", p.FromDate)
	}
	if p.ToDate != "" {
		q.Set("to_date", p.ToDate)
	}
	return q
}
