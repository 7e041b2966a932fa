package webhook

import (
	"context"
	"fmt"

	"github.com/akylbek/transvoucher-go/models"
)

// HandlerFunc processes one verified event.
type HandlerFunc func(ctx context.Context, event models.WebhookEvent) error

// Dispatcher routes events to the handler registered for their type.
// Register handlers before calling Dispatch; it is not safe to register
// concurrently with dispatching.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	fallback HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// On registers h for eventType, replacing any previous handler.
func (d *Dispatcher) On(eventType string, h HandlerFunc) *Dispatcher {
	d.handlers[eventType] = h
	return d
}

// Fallback handles event types with no registered handler.
func (d *Dispatcher) Fallback(h HandlerFunc) *Dispatcher {
	d.fallback = h
	return d
}

// Dispatch runs the matching handler. Unknown types without a fallback
// are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.WebhookEvent) error {
	h, ok := d.handlers[event.EventType()]
	if !ok {
		h = d.fallback
	}
	if h == nil {
		return nil
	}
	if err := h(ctx, event); err != nil {
		return fmt.Errorf("handle %q: %w", event.EventType(), err)
	}
	return nil
}
