// Command eventlog consumes carpool events from RabbitMQ and appends them to
// a log file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/orgatagova/orgatagova/internal/config"
	"github.com/orgatagova/orgatagova/internal/queue"
	"github.com/orgatagova/orgatagova/internal/slogx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEventsConfig()
	logger := slogx.New(slogx.Config{
		Service: "orgatagova-eventlog",
		Env:     os.Getenv("APP_ENV"),
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("consuming", "queue", cfg.Queue, "dir", cfg.LogDir)
	if err := queue.NewConsumer(cfg, logger).Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", "err", err)
		os.Exit(1)
	}
}
