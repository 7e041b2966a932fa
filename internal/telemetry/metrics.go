package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transvoucher_webhooks_received_total",
		Help: "Webhook deliveries by event type and outcome.",
	}, []string{"event", "outcome"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transvoucher_events_published_total",
		Help: "Webhook events forwarded to the message bus.",
	}, []string{"sink", "outcome"})

	LedgerEntriesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transvoucher_ledger_entries_total",
		Help: "Completed payments booked into the settlement ledger.",
	}, []string{"currency", "outcome"})
)
