package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"github.com/rift-augur/rift-augur-backend/internal/service"
	"github.com/rift-augur/rift-augur-backend/pkg/logger"
)

// respondError 서비스 에러를 HTTP 상태 코드로 변환
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, repository.ErrAlreadyExists):
		status, message = http.StatusConflict, "Already exists"
	case errors.Is(err, service.ErrResultAlreadyReported):
		status, message = http.StatusConflict, "Match result already reported"
	case errors.Is(err, repository.ErrBackendUnavailable):
		status, message = http.StatusServiceUnavailable, "Service unavailable"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	_ = c.Error(err)

	c.JSON(status, gin.H{"error": message})
}
