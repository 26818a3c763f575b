// Package main runs the expense assistant: the Telegram surface, the
// workflow engine behind it and the ops HTTP API, all in one process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/jpalomar/gastobot/pkg/config"
	"github.com/jpalomar/gastobot/pkg/log"
)

const (
	defaultPort           = 8081
	defaultCacheRetention = 24 * time.Hour
)

func main() {
	config.LoadEnvFile()

	cmd := &cli.Command{
		Name:                  "gastobot",
		Usage:                 "Conversational expense logging over Telegram",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "telegram-token",
				Usage:    "Telegram bot API token",
				Required: true,
				Sources:  cli.EnvVars("TELEGRAM_BOT_TOKEN"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "openai-api-key",
				Usage:    "OpenAI API key for planning, extraction and rendering",
				Required: true,
				Sources:  cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "openai-model",
				Usage:   "OpenAI model name (empty uses the client default)",
				Sources: cli.EnvVars("OPENAI_MODEL"),
			},
			&cli.StringFlag{
				Name:     "minio-endpoint",
				Usage:    "Object store endpoint",
				Required: true,
				Sources:  cli.EnvVars("MINIO_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:     "minio-access-key",
				Usage:    "Object store access key",
				Required: true,
				Sources:  cli.EnvVars("MINIO_ACCESS_KEY"),
			},
			&cli.StringFlag{
				Name:     "minio-secret-key",
				Usage:    "Object store secret key",
				Required: true,
				Sources:  cli.EnvVars("MINIO_SECRET_KEY"),
			},
			&cli.StringFlag{
				Name:    "minio-bucket",
				Usage:   "Bucket for receipt images",
				Value:   "receipts",
				Sources: cli.EnvVars("MINIO_BUCKET"),
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Usage:   "Directory for the local receipt image cache",
				Value:   "./cache",
				Sources: cli.EnvVars("CACHE_DIR"),
			},
			&cli.DurationFlag{
				Name:    "cache-retention",
				Usage:   "How long cached receipt images are kept",
				Value:   defaultCacheRetention,
				Sources: cli.EnvVars("CACHE_RETENTION"),
			},
			&cli.StringFlag{
				Name:    "cache-sweep-schedule",
				Usage:   "Cron schedule for the cache janitor",
				Value:   "@hourly",
				Sources: cli.EnvVars("CACHE_SWEEP_SCHEDULE"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the ops HTTP API",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Run(ctx, os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("gastobot")

	cfg := config.Config{
		TelegramToken:      command.String("telegram-token"),
		DatabaseURL:        command.String("database-url"),
		OpenAIAPIKey:       command.String("openai-api-key"),
		OpenAIModel:        command.String("openai-model"),
		MinioEndpoint:      command.String("minio-endpoint"),
		MinioAccessKey:     command.String("minio-access-key"),
		MinioSecretKey:     command.String("minio-secret-key"),
		MinioBucket:        command.String("minio-bucket"),
		CacheDir:           command.String("cache-dir"),
		CacheRetention:     command.Duration("cache-retention"),
		CacheSweepSchedule: command.String("cache-sweep-schedule"),
		Port:               command.Int("port"),
		LogLevel:           command.String("log-level"),
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Initializing gastobot")

	return newApp(logger, cfg).Run(ctx)
}
