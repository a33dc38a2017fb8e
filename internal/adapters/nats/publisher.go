package natsad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"isuumo/internal/adapters/observability"
)

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("isuumo-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn}, nil
}

// Publish hands the message to the client's buffer; it does not wait for a server ack.
func (p *Publisher) Publish(ctx context.Context, subject string, v any) (err error) {
	defer func() { observability.ObserveEvent("nats", subject, err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, b)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
