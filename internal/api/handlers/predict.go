package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/service"
)

type PredictHandler struct {
	rating *service.RatingService
}

func NewPredictHandler(rating *service.RatingService) *PredictHandler {
	return &PredictHandler{
		rating: rating,
	}
}

// Predict 두 팀 승률 예측
func (h *PredictHandler) Predict(c *gin.Context) {
	var req models.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "team_a and team_b must be provided"})
		return
	}

	prediction, err := h.rating.PredictMatch(c.Request.Context(), req.TeamA, req.TeamB)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}
