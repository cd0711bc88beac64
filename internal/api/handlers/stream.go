package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/notification"
)

const keepAliveInterval = 15 * time.Second

type StreamHandler struct {
	bus notification.Bus
}

func NewStreamHandler(bus notification.Bus) *StreamHandler {
	return &StreamHandler{
		bus: bus,
	}
}

// Stream 매치 생성 이벤트 SSE 스트림
// 이벤트 하나당 "message" 이벤트 하나. 클라이언트가 끊으면 구독도 해제된다.
func (h *StreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	events, err := h.bus.Subscribe(ctx, notification.TopicMatches)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stream unavailable"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("message", string(payload))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
}
