package models

const (
	EventPaymentCompleted    = "payment.completed"
	EventPaymentFailed       = "payment.failed"
	EventPaymentRefunded     = "payment.refunded"
	EventSettlementProcessed = "settlement.processed"
)

// WebhookEvent is a decoded webhook body. Unknown keys are kept.
type WebhookEvent map[string]any

// EventType returns the "type" field, or "" when absent or not a string.
func (e WebhookEvent) EventType() string {
	t, _ := e["type"].(string)
	return t
}

// EventData returns the "data" object, or nil when absent.
func (e WebhookEvent) EventData() map[string]any {
	d, _ := e["data"].(map[string]any)
	return d
}

func (e WebhookEvent) IsPaymentCompleted() bool    { return e.EventType() == EventPaymentCompleted }
func (e WebhookEvent) IsPaymentFailed() bool       { return e.EventType() == EventPaymentFailed }
func (e WebhookEvent) IsPaymentRefunded() bool     { return e.EventType() == EventPaymentRefunded }
func (e WebhookEvent) IsSettlementProcessed() bool { return e.EventType() == EventSettlementProcessed }

// Payment decodes the event data as a payment. It returns nil when the
// event carries no data object.
func (e WebhookEvent) Payment() (*Payment, error) {
	data := e.EventData()
	if data == nil {
		return nil, nil
	}
	return PaymentFromMap(data)
}
