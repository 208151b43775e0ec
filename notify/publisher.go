package notify

import (
	"context"
	"encoding/json"

	"equiplend/lending"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "equiplend:events"

// Publisher pushes standing-change events onto a Redis channel for the
// notification UI to consume.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, ev lending.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}
