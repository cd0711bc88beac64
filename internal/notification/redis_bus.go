package notification

import (
	"context"

	"github.com/rift-augur/rift-augur-backend/internal/metrics"
	"github.com/rift-augur/rift-augur-backend/pkg/distributed"
)

// RedisBus 여러 서버 인스턴스에 걸친 Bus (Redis Pub/Sub)
type RedisBus struct {
	pubsub *distributed.RedisPubSub
}

func NewRedisBus(pubsub *distributed.RedisPubSub) *RedisBus {
	pubsub.OnDrop(metrics.NotificationsDropped.Inc)
	return &RedisBus{pubsub: pubsub}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.pubsub.Publish(ctx, topic, payload); err != nil {
		return err
	}
	metrics.NotificationsPublished.Inc()
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	metrics.ActiveSubscribers.Inc()
	go func() {
		<-ctx.Done()
		metrics.ActiveSubscribers.Dec()
	}()

	return ch, nil
}
