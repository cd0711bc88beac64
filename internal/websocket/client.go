package websocket

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rift-augur/rift-augur-backend/internal/notification"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// Client WebSocket 구독자
// 버스 구독 하나를 연결 하나에 묶는다. 연결이 끊기면 구독도 해제된다.
type Client struct {
	conn   *websocket.Conn
	events <-chan []byte
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewUpgrader 허용 origin 목록으로 Upgrader 생성 ("*" 또는 빈 목록이면 전부 허용)
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}
}

func originAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" || len(allowedOrigins) == 0 {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	for _, allowed := range allowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" || strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

// readPump 클라이언트 메시지는 버리고 핑/퐁과 종료만 감지
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump 버스 이벤트를 텍스트 프레임으로 전달
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.events:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 구독 종료
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Warn("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs WebSocket 업그레이드 후 매치 이벤트 구독 시작
func ServeWs(bus notification.Bus, allowedOrigins []string, w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	conn, err := NewUpgrader(allowedOrigins).Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	// 요청 context는 핸들러 반환과 함께 끝나므로 별도 context 사용
	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx, notification.TopicMatches)
	if err != nil {
		cancel()
		logger.Warn("Failed to subscribe to match events", zap.Error(err))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscription unavailable"))
		conn.Close()
		return
	}

	client := &Client{
		conn:   conn,
		events: events,
		cancel: cancel,
		logger: logger.With(zap.String("remote_addr", r.RemoteAddr)),
	}

	go client.writePump()
	go client.readPump()
}
