package main

import (
	"context"
	"log/slog"

	"github.com/jpalomar/gastobot/pkg/capabilities/extractreceipt"
	"github.com/jpalomar/gastobot/pkg/capabilities/plan"
	"github.com/jpalomar/gastobot/pkg/capabilities/querystatus"
	"github.com/jpalomar/gastobot/pkg/capabilities/render"
	"github.com/jpalomar/gastobot/pkg/capabilities/upsertexpense"
	"github.com/jpalomar/gastobot/pkg/config"
	"github.com/jpalomar/gastobot/pkg/eventbus"
	"github.com/jpalomar/gastobot/pkg/events"
	"github.com/jpalomar/gastobot/pkg/filecache"
	"github.com/jpalomar/gastobot/pkg/llm"
	"github.com/jpalomar/gastobot/pkg/objectstore/minio"
	"github.com/jpalomar/gastobot/pkg/persistence/postgresql"
	"github.com/jpalomar/gastobot/pkg/telegram"
	"github.com/jpalomar/gastobot/pkg/web"
	"github.com/jpalomar/gastobot/pkg/workflow"
)

// Object keys for uploaded receipt photos live under this prefix.
const telegramScanPrefix = "telegram/"

// App wires the process: storage, LLM backends, the workflow engine, the
// Telegram loop and the ops API.
type App struct {
	logger *slog.Logger
	cfg    config.Config
}

func newApp(logger *slog.Logger, cfg config.Config) *App {
	return &App{logger: logger, cfg: cfg}
}

// Run blocks until the context is canceled or a fatal startup error occurs.
func (a *App) Run(ctx context.Context) error {
	logger := a.logger

	persistence, err := postgresql.NewPersistence(ctx, logger, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	store, err := minio.NewStore(ctx, logger, minio.Config{
		Endpoint:  a.cfg.MinioEndpoint,
		AccessKey: a.cfg.MinioAccessKey,
		SecretKey: a.cfg.MinioSecretKey,
		Bucket:    a.cfg.MinioBucket,
	})
	if err != nil {
		return err
	}

	cache, err := filecache.New(a.cfg.CacheDir)
	if err != nil {
		return err
	}

	janitor, err := filecache.NewJanitor(logger, cache, a.cfg.CacheSweepSchedule, a.cfg.CacheRetention)
	if err != nil {
		return err
	}

	janitor.Start()
	defer janitor.Stop()

	eventBus := eventbus.NewGoChannelEventBus(logger)

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	if err := a.subscribeAuditLog(ctx, eventBus); err != nil {
		return err
	}

	client := llm.NewClient(logger, a.cfg.OpenAIAPIKey, a.cfg.OpenAIModel)

	orchestrator := workflow.NewOrchestrator(
		logger,
		plan.NewPlanner(logger, client),
		render.New(logger, client, workflow.FallbackResponseText),
		extractreceipt.New(logger, client, store, cache, telegramScanPrefix),
		upsertexpense.New(logger, persistence.Users(), persistence.Expenses()),
		querystatus.New(logger, client, persistence.StatusQueries()).WithEventPublisher(eventBus),
	).WithEventPublisher(eventBus)

	bot, err := telegram.NewBot(logger, a.cfg.TelegramToken, orchestrator, store, cache)
	if err != nil {
		return err
	}

	api := web.NewAPI(logger, persistence)

	go func() {
		if err := api.Start(a.cfg.Port); err != nil {
			logger.ErrorContext(ctx, "Ops API stopped", "error", err)
		}
	}()

	return bot.Start(ctx)
}

// subscribeAuditLog logs turn lifecycle and query rejection events from the
// bus. It is the only in-process consumer; external consumers would attach to
// a broker-backed bus the same way.
func (a *App) subscribeAuditLog(ctx context.Context, bus eventbus.EventBus) error {
	logger := a.logger.With("module", "audit")

	err := bus.Handle(events.TurnCompletedEvent, func(ctx context.Context, event any) error {
		completed, ok := event.(*events.TurnCompleted)
		if !ok {
			return nil
		}

		logger.InfoContext(ctx, "Turn completed",
			"turn_id", completed.TurnID,
			"steps", completed.Steps,
			"duration", completed.Duration,
			"forced", completed.Forced,
		)

		return nil
	})
	if err != nil {
		return err
	}

	err = bus.Handle(events.QueryRejectedEvent, func(ctx context.Context, event any) error {
		rejected, ok := event.(*events.QueryRejected)
		if !ok {
			return nil
		}

		logger.WarnContext(ctx, "Status query rejected",
			"turn_id", rejected.TurnID,
			"statement", rejected.Statement,
		)

		return nil
	})
	if err != nil {
		return err
	}

	return bus.Subscribe(ctx)
}
