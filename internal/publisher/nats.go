package publisher

import (
	"context"

	"github.com/nats-io/nats.go"
)

// NatsPublisher publishes events on a subject equal to the topic name.
type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(url string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("transvoucher-gateway"))
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := nats.NewMsg(topic)
	msg.Header.Set("Transaction-Id", key)
	msg.Data = payload
	return p.conn.PublishMsg(msg)
}

func (p *NatsPublisher) Close() error {
	return p.conn.Drain()
}
