package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"github.com/rift-augur/rift-augur-backend/internal/service"
)

type PlayerHandler struct {
	players *service.PlayerService
}

func NewPlayerHandler(players *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		players: players,
	}
}

// CreatePlayer 플레이어 생성
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req models.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.players.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("Player %s already exists", req.PlayerID),
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": fmt.Sprintf("player %s added", profile.PlayerID),
		"player": profile,
	})
}

// UpdatePlayer 플레이어 레이팅/선호 캐릭터 수정
func (h *PlayerHandler) UpdatePlayer(c *gin.Context) {
	var req models.UpdatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.players.Update(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": fmt.Sprintf("Player %s not found", req.PlayerID),
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": fmt.Sprintf("player %s updated", profile.PlayerID),
		"player": profile,
	})
}

// ListPlayers 전체 또는 prefix 조회
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	profiles, err := h.players.List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetPlayerStats 플레이어 전적 (없으면 기본값으로 생성)
func (h *PlayerHandler) GetPlayerStats(c *gin.Context) {
	profile, err := h.players.GetStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
