package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/app"
	"github.com/rift-augur/rift-augur-backend/internal/config"
	"github.com/rift-augur/rift-augur-backend/pkg/logger"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fx.New(
		app.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(runServer),
	).Run()
}

func runServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, log *zap.Logger) {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// SSE/WebSocket 스트림 때문에 WriteTimeout은 두지 않는다
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     c.Handler(router),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Rift Augur Backend",
				zap.String("port", cfg.Port),
				zap.String("env", cfg.Env),
				zap.Int("match_size", cfg.MatchSize))

			go func() {
				log.Info("Server listening", zap.String("address", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("Failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			defer logger.Sync()

			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Server forced to shutdown", zap.Error(err))
				return err
			}
			log.Info("Server exited")
			return nil
		},
	})
}
