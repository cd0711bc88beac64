package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/service"
)

type QueueHandler struct {
	matchmaking *service.MatchmakingService
}

func NewQueueHandler(matchmaking *service.MatchmakingService) *QueueHandler {
	return &QueueHandler{
		matchmaking: matchmaking,
	}
}

// JoinQueue 매칭 큐 진입
func (h *QueueHandler) JoinQueue(c *gin.Context) {
	var req models.JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.matchmaking.Join(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// LeaveQueue 매칭 큐 이탈
func (h *QueueHandler) LeaveQueue(c *gin.Context) {
	playerID := c.Param("id")
	if err := h.matchmaking.Leave(c.Request.Context(), playerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "left",
	})
}

// ListQueue 대기 중인 플레이어
func (h *QueueHandler) ListQueue(c *gin.Context) {
	entries, err := h.matchmaking.Entries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"players": entries,
		"total":   len(entries),
	})
}
