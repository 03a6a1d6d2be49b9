package main // Entry point of the carpool API server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/orgatagova/orgatagova/internal/config"
	"github.com/orgatagova/orgatagova/internal/database"
	"github.com/orgatagova/orgatagova/internal/handler"
	"github.com/orgatagova/orgatagova/internal/metrics"
	"github.com/orgatagova/orgatagova/internal/middleware"
	"github.com/orgatagova/orgatagova/internal/queue"
	"github.com/orgatagova/orgatagova/internal/repository"
	"github.com/orgatagova/orgatagova/internal/router"
	"github.com/orgatagova/orgatagova/internal/service"
	"github.com/orgatagova/orgatagova/internal/slogx"
)

func main() {
	cfg := config.Load()
	logger := slogx.New(slogx.Config{
		Service: "orgatagova-api",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// Redis is optional; without it the cache and rate limiter are no-ops.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", "err", err)
	} else {
		defer rdb.Close()
	}

	opts := []service.Option{service.WithLocation(cfg.Location())}
	if ev := config.LoadEventsConfig(); ev.Enabled {
		opts = append(opts, service.WithEvents(queue.NewPublisher(ev)))
		logger.Info("publishing carpool events", "queue", ev.Queue)
	}
	svc := service.New(repository.NewStore(db, cfg.TxTimeout), opts...)

	metrics.MustRegister()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(slogx.Middleware(logger))
	e.Use(middleware.Metrics())

	router.Register(e, db, router.Handlers{
		Carpools: &handler.CarpoolHandler{Svc: svc},
		Public:   &handler.PublicHandler{Svc: svc},
		Me:       &handler.MeHandler{Svc: svc},
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
