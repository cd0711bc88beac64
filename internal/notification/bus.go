package notification

import "context"

// TopicMatches 매치 생성 이벤트 토픽
const TopicMatches = "matchmaking:matches"

// Bus 토픽 기반 pub/sub
//
// Delivery is at-most-once with no backlog: a subscriber only sees payloads
// published after Subscribe returns. Publish never waits on subscribers.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe returns a channel that is closed once ctx is cancelled.
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
}
