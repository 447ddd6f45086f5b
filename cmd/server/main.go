// Command server runs the CareConnect REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eldercare/careconnect/internal/api"
	"github.com/eldercare/careconnect/internal/core/service"
	mongodb "github.com/eldercare/careconnect/internal/infrastructure/db/mongo"
	redisdb "github.com/eldercare/careconnect/internal/infrastructure/db/redis"
	"github.com/eldercare/careconnect/internal/infrastructure/http/handlers"
	"github.com/eldercare/careconnect/internal/infrastructure/queue"
	"github.com/eldercare/careconnect/internal/pkg/config"
	"github.com/eldercare/careconnect/internal/security"
	"github.com/eldercare/careconnect/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title        CareConnect API
// @version      1.0
// @description  Service requests between care-seekers and caregivers.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServer(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "careconnect-api"})
		bootLog := logger.Get()
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "careconnect-api",
		Pretty:  cfg.Env == "development",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	// --- Audit trail ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, mongodb.NewDecisionEventRepository(db), logger.For("audit"))
	dispatcher.Start(workerCtx)

	// --- Use cases ---
	authService := service.NewAuthService(mongodb.NewUserRepository(db), cfg.JWTSecret, cfg.TokenTTL)
	requestService := service.NewServiceRequestService(
		mongodb.NewServiceRequestRepository(db),
		redisdb.NewIdempotencyStore(rdb),
		security.NewTextSanitizer(),
		dispatcher,
		logger.For("service-requests"),
	)
	health := handlers.NewHealthHandler(map[string]handlers.Check{
		"mongo": handlers.MongoCheck(db),
		"redis": handlers.RedisCheck(rdb),
	})

	e := api.NewRouter(
		api.Services{Auth: authService, Requests: requestService, Health: health},
		api.Options{JWTSecret: cfg.JWTSecret, AuthRateLimit: cfg.AuthRateLimit},
		logger.For("http"),
	)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	cancelWorkers()
	dispatcher.Wait()
	log.Info().Msg("bye")
}
