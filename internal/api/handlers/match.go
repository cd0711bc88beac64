package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/service"
)

type MatchHandler struct {
	matches *service.MatchService
}

func NewMatchHandler(matches *service.MatchService) *MatchHandler {
	return &MatchHandler{
		matches: matches,
	}
}

// ReportResult 매치 결과 반영
// 일부 플레이어 반영 실패는 200 응답의 failures에 담긴다.
func (h *MatchHandler) ReportResult(c *gin.Context) {
	var req models.MatchResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.matches.ReportResult(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// RecentMatches 최근 매치 기록
func (h *MatchHandler) RecentMatches(c *gin.Context) {
	records, err := h.matches.RecentMatches(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": records,
		"total":   len(records),
	})
}
