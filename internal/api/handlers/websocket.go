package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/notification"
	"github.com/rift-augur/rift-augur-backend/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler WebSocket 연결 처리
type WebSocketHandler struct {
	bus            notification.Bus
	allowedOrigins []string
	logger         *zap.Logger
}

// NewWebSocketHandler WebSocketHandler 생성
func NewWebSocketHandler(bus notification.Bus, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		bus:            bus,
		allowedOrigins: allowedOrigins,
		logger:         logger.Named("websocket"),
	}
}

// HandleWebSocket WebSocket 연결 엔드포인트
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	websocket.ServeWs(h.bus, h.allowedOrigins, c.Writer, c.Request, h.logger)
}
