package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rift-augur/rift-augur-backend/internal/api"
	"github.com/rift-augur/rift-augur-backend/internal/api/handlers"
	"github.com/rift-augur/rift-augur-backend/internal/cache"
	"github.com/rift-augur/rift-augur-backend/internal/config"
	"github.com/rift-augur/rift-augur-backend/internal/matchmaking"
	"github.com/rift-augur/rift-augur-backend/internal/notification"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"github.com/rift-augur/rift-augur-backend/internal/service"
	"github.com/rift-augur/rift-augur-backend/pkg/database"
	"github.com/rift-augur/rift-augur-backend/pkg/distributed"
	"github.com/rift-augur/rift-augur-backend/pkg/logger"
	"github.com/rift-augur/rift-augur-backend/pkg/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module 애플리케이션 의존성 그래프
// REDIS_URL이 없으면 큐/캐시/버스/기록은 프로세스 내부 구현을 쓴다.
var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideRedis),
	// storage
	fx.Provide(ProvideProfileRepository),
	fx.Provide(ProvideProfileCache),
	fx.Provide(ProvideMatchHistory),
	fx.Provide(ProvideResultLedger),
	// matchmaking
	fx.Provide(ProvideQueue),
	fx.Provide(ProvideBus),
	fx.Provide(ProvideLimiter),
	// svc
	fx.Provide(ProvidePlayerService),
	fx.Provide(ProvideRatingService),
	fx.Provide(ProvideMatchmakingService),
	fx.Provide(ProvideMatchService),
	// http
	fx.Provide(ProvideHandlers),
	fx.Provide(api.SetupRouter),
)

func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.Init(cfg.Env, cfg.LogLevel)
}

// ProvideRedis REDIS_URL이 비어 있으면 nil 클라이언트
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Info("Redis not configured, using in-process backends")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			log.Info("Redis connection established", zap.String("addr", opts.Addr))
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

// ProvideProfileRepository DATABASE_URL이 비어 있으면 in-memory 저장소
func ProvideProfileRepository(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (repository.ProfileRepository, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, profiles are kept in memory")
		return repository.NewMemoryProfileRepository(), nil
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established", zap.String("driver", cfg.DatabaseDriver))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})

	return repository.NewSQLProfileRepository(db), nil
}

func ProvideProfileCache(cfg *config.Config, client *redis.Client, log *zap.Logger) cache.ProfileCache {
	switch {
	case !cfg.CacheEnabled:
		return cache.NoopCache{}
	case client != nil:
		return cache.NewRedisProfileCache(client, log)
	}
	return cache.NewMemoryProfileCache()
}

func ProvideMatchHistory(cfg *config.Config, client *redis.Client) repository.MatchHistory {
	if client != nil {
		return repository.NewRedisMatchHistory(client, cfg.HistoryLimit)
	}
	return repository.NewMemoryMatchHistory(cfg.HistoryLimit)
}

func ProvideResultLedger(client *redis.Client) service.ResultLedger {
	if client != nil {
		return service.NewRedisResultLedger(distributed.NewRedisClaimStore(client, "match:result:"), service.DefaultLedgerTTL)
	}
	return service.NewMemoryResultLedger(service.DefaultLedgerTTL)
}

func ProvideQueue(client *redis.Client) matchmaking.Queue {
	if client != nil {
		return matchmaking.NewRedisQueue(distributed.NewRedisSortedQueue(client, "matchmaking"))
	}
	return matchmaking.NewMemoryQueue()
}

func ProvideBus(client *redis.Client, log *zap.Logger) notification.Bus {
	if client != nil {
		return notification.NewRedisBus(distributed.NewRedisPubSub(client, log))
	}
	return notification.NewBroker(log)
}

// ProvideLimiter RATE_LIMIT_PER_MINUTE <= 0 이면 한도 없음
func ProvideLimiter(lc fx.Lifecycle, cfg *config.Config, client *redis.Client) ratelimit.Limiter {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	if client != nil {
		return ratelimit.NewRedisRateLimiter(client, "ratelimit", cfg.RateLimitPerMinute, time.Minute)
	}

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			limiter.Stop()
			return nil
		},
	})
	return limiter
}

func ProvidePlayerService(cfg *config.Config, repo repository.ProfileRepository, profileCache cache.ProfileCache, log *zap.Logger) *service.PlayerService {
	return service.NewPlayerService(repo, profileCache, cfg.CacheTTL, cfg.DefaultRating, log)
}

func ProvideRatingService(cfg *config.Config, players *service.PlayerService, log *zap.Logger) *service.RatingService {
	return service.NewRatingService(players, cfg.RatingSteepness, cfg.DefaultRating, log)
}

// ProvideMatchmakingService 주기적 매치 생성은 앱 수명에 묶는다
func ProvideMatchmakingService(
	lc fx.Lifecycle,
	cfg *config.Config,
	queue matchmaking.Queue,
	players *service.PlayerService,
	bus notification.Bus,
	history repository.MatchHistory,
	log *zap.Logger,
) *service.MatchmakingService {
	mm := service.NewMatchmakingService(queue, players, bus, history, cfg.MatchSize, cfg.MatchmakingInterval, log)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			mm.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			mm.Stop()
			return nil
		},
	})
	return mm
}

func ProvideMatchService(
	cfg *config.Config,
	players *service.PlayerService,
	ledger service.ResultLedger,
	history repository.MatchHistory,
	log *zap.Logger,
) *service.MatchService {
	return service.NewMatchService(players, ledger, history, cfg.RatingDelta, cfg.ResultWorkers, log)
}

func ProvideHandlers(
	cfg *config.Config,
	client *redis.Client,
	players *service.PlayerService,
	rating *service.RatingService,
	mm *service.MatchmakingService,
	matches *service.MatchService,
	bus notification.Bus,
	log *zap.Logger,
) *api.Handlers {
	checks := map[string]handlers.Check{
		"database": players.Ping,
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}

	return &api.Handlers{
		Players:   handlers.NewPlayerHandler(players),
		Queue:     handlers.NewQueueHandler(mm),
		Matches:   handlers.NewMatchHandler(matches),
		Predict:   handlers.NewPredictHandler(rating),
		Stream:    handlers.NewStreamHandler(bus),
		WebSocket: handlers.NewWebSocketHandler(bus, cfg.CORSAllowedOrigins, log),
		Health:    handlers.NewHealthHandler(checks),
	}
}
