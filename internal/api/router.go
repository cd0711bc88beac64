package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rift-augur/rift-augur-backend/internal/api/handlers"
	"github.com/rift-augur/rift-augur-backend/internal/api/middleware"
	"github.com/rift-augur/rift-augur-backend/internal/config"
	"github.com/rift-augur/rift-augur-backend/pkg/ratelimit"
)

// Handlers 라우터에 연결할 핸들러 묶음
type Handlers struct {
	Players   *handlers.PlayerHandler
	Queue     *handlers.QueueHandler
	Matches   *handlers.MatchHandler
	Predict   *handlers.PredictHandler
	Stream    *handlers.StreamHandler
	WebSocket *handlers.WebSocketHandler
	Health    *handlers.HealthHandler
}

// SetupRouter API 라우터 설정
// limiter가 nil이면 쓰기 요청에 한도를 두지 않는다.
func SetupRouter(cfg *config.Config, h *Handlers, limiter ratelimit.Limiter) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	var limited gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if limiter != nil {
		limited = middleware.RateLimit(limiter, middleware.IPKeyFunc)
	}

	router.GET("/", handlers.Index)
	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Player routes
	router.POST("/players", limited, h.Players.CreatePlayer)
	router.PUT("/players", limited, h.Players.UpdatePlayer)
	router.GET("/players", h.Players.ListPlayers)
	router.GET("/player/:id/stats", h.Players.GetPlayerStats)

	// Queue routes
	queue := router.Group("/queue")
	{
		queue.POST("", limited, h.Queue.JoinQueue)
		queue.DELETE("/:id", h.Queue.LeaveQueue)
		queue.GET("/players", h.Queue.ListQueue)
	}

	// Match routes
	matches := router.Group("/matches")
	{
		matches.POST("/:id/results", limited, h.Matches.ReportResult)
		matches.GET("/recent", h.Matches.RecentMatches)
	}

	router.POST("/predict", h.Predict.Predict)

	// 실시간 매치 알림
	router.GET("/stream", h.Stream.Stream)
	router.GET("/ws", h.WebSocket.HandleWebSocket)

	return router
}
