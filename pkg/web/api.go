package web

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/jpalomar/gastobot/pkg/persistence"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
}

func NewAPI(logger *slog.Logger, persistence persistence.Persistence) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
	}
}

func (a *API) App() *fiber.App {
	handlers := NewHandlers(a.persistence)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Gastobot ops API")
	})

	app.Get("/health", handlers.HealthCheck)
	app.Get("/expenses/:id", handlers.GetExpense)
	app.Get("/users/:externalId/expenses/count", handlers.GetUserExpenseCount)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
