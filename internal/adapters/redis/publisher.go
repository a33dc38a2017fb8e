package redisad

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"isuumo/internal/adapters/observability"
)

// Publisher fans events out over Redis pub/sub, one channel per subject.
type Publisher struct{ c *redis.Client }

func New(addr, pass string, db int) *Publisher {
	return &Publisher{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// NewWithClient shares an existing client.
func NewWithClient(c *redis.Client) *Publisher { return &Publisher{c: c} }

func (p *Publisher) Publish(ctx context.Context, subject string, v any) (err error) {
	defer func() { observability.ObserveEvent("redis", subject, err) }()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.c.Publish(ctx, subject, b).Err()
}

func (p *Publisher) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

func (p *Publisher) Close() error { return p.c.Close() }
