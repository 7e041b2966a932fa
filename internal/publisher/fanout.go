package publisher

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/akylbek/transvoucher-go/internal/interfaces"
	"github.com/akylbek/transvoucher-go/internal/telemetry"
)

type sink struct {
	name      string
	publisher interfaces.EventPublisher
}

// Fanout publishes every event to all configured sinks. A failing sink
// does not stop delivery to the others.
type Fanout struct {
	sinks []sink
}

func NewFanout() *Fanout {
	return &Fanout{}
}

func (f *Fanout) Add(name string, p interfaces.EventPublisher) *Fanout {
	f.sinks = append(f.sinks, sink{name: name, publisher: p})
	return f
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) Publish(ctx context.Context, topic, key string, payload []byte) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.publisher.Publish(ctx, topic, key, payload); err != nil {
			telemetry.EventsPublished.WithLabelValues(s.name, "error").Inc()
			telemetry.Logger.Error("Failed to publish event",
				zap.String("sink", s.name),
				zap.String("topic", topic),
				zap.String("transaction_id", key),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		telemetry.EventsPublished.WithLabelValues(s.name, "ok").Inc()
	}
	return errors.Join(errs...)
}

func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
