package notification

import (
	"context"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rift-augur/rift-augur-backend/internal/metrics"
	"go.uber.org/zap"
)

const subscriberBuffer = 64

type subscription struct {
	id    string
	topic string
	ch    chan []byte
}

// Broker in-process Bus
// 느린 구독자는 메시지를 잃을 뿐 발행자를 막지 않는다.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[string]*subscription
	logger *zap.Logger
}

func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		topics: make(map[string]map[string]*subscription),
		logger: logger.Named("notification"),
	}
}

func (b *Broker) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	sub := &subscription{
		id:    id,
		topic: topic,
		ch:    make(chan []byte, subscriberBuffer),
	}

	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[string]*subscription)
	}
	b.topics[topic][id] = sub
	b.mu.Unlock()

	metrics.ActiveSubscribers.Inc()
	b.logger.Debug("Subscriber registered", zap.String("subscription_id", id), zap.String("topic", topic))

	go func() {
		<-ctx.Done()
		b.unsubscribe(sub)
	}()

	return sub.ch, nil
}

func (b *Broker) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[sub.topic]
	if _, ok := subs[sub.id]; !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
	close(sub.ch)

	metrics.ActiveSubscribers.Dec()
	b.logger.Debug("Subscriber removed", zap.String("subscription_id", sub.id), zap.String("topic", sub.topic))
}

func (b *Broker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metrics.NotificationsPublished.Inc()

	for _, sub := range b.topics[topic] {
		// 구독자마다 별도 복사본
		msg := append([]byte(nil), payload...)
		select {
		case sub.ch <- msg:
		default:
			metrics.NotificationsDropped.Inc()
			b.logger.Warn("Dropped notification for slow subscriber",
				zap.String("subscription_id", sub.id),
				zap.String("topic", topic),
				zap.Int("buffer", cap(sub.ch)))
		}
	}
	return nil
}

// SubscriberCount 토픽 구독자 수
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.topics[topic])
}
