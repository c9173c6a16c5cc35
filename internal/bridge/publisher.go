package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"voicewatch/internal/monitor"

	"github.com/redis/go-redis/v9"
)

// Channel is the pub/sub channel other processes subscribe to for the live
// notification feed.
const Channel = "voicewatch:events"

const publishTimeout = 2 * time.Second

// publisher is the slice of redis.Client the bridge needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Publisher mirrors monitor notifications onto a redis channel so that
// processes beyond this one can follow call lifecycles.
type Publisher struct {
	rdb     publisher
	channel string
	log     *slog.Logger
}

func NewPublisher(rdb *redis.Client, log *slog.Logger) *Publisher {
	return &Publisher{rdb: rdb, channel: Channel, log: log}
}

// Attach subscribes the publisher to every monitor notification and returns
// the unsubscribe function.
func (p *Publisher) Attach(m *monitor.Monitor) func() {
	return m.Subscribe(monitor.TopicAll, p.publish)
}

func (p *Publisher) publish(ntf monitor.Notification) {
	payload, err := json.Marshal(ntf)
	if err != nil {
		p.log.Error("failed to encode notification", "topic", ntf.Topic, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warn("failed to publish notification", "topic", ntf.Topic, "error", err)
	}
}
