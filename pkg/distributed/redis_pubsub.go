package distributed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 64

// RedisPubSub Redis Pub/Sub 기반 토픽 브로드캐스트
// 인스턴스 간 이벤트 전달용. 구독 전에 발행된 메시지는 받지 못한다.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
	buffer int
	onDrop func()
}

func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		logger: logger,
		buffer: defaultSubscriberBuffer,
	}
}

// OnDrop 구독자 버퍼가 가득 차 메시지를 버릴 때 호출될 함수
func (p *RedisPubSub) OnDrop(fn func()) {
	p.onDrop = fn
}

// Publish 메시지 발행 (구독자를 기다리지 않음)
func (p *RedisPubSub) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe 토픽 구독
// 반환된 채널은 ctx가 취소되면 닫힌다.
func (p *RedisPubSub) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	pubsub := p.client.Subscribe(ctx, topic)

	// 구독 확인
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	out := make(chan []byte, p.buffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					if p.onDrop != nil {
						p.onDrop()
					}
					p.logger.Debug("Dropped message for slow subscriber", zap.String("topic", topic))
				}
			}
		}
	}()

	return out, nil
}
