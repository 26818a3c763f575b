// Package web provides the operational HTTP surface: health probes and a few
// read-only lookups used for support and debugging. The conversational surface
// lives in the telegram package; nothing here mutates expense data.
package web

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/jpalomar/gastobot/pkg/persistence"
)

type Handlers struct {
	persistence persistence.Persistence
}

func NewHandlers(persistence persistence.Persistence) *Handlers {
	return &Handlers{persistence: persistence}
}

func (h *Handlers) HealthCheck(c fiber.Ctx) error {
	repositoryErr := h.persistence.HealthCheck(c.Context())

	status := "healthy"
	message := "gastobot is healthy"
	httpStatus := http.StatusOK
	repositoryCheck := "ok"

	if repositoryErr != nil {
		status = "unhealthy"
		message = "gastobot is unhealthy"
		httpStatus = http.StatusInternalServerError
		repositoryCheck = repositoryErr.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// GetExpense returns a single expense by its internal ID.
func (h *Handlers) GetExpense(c fiber.Ctx) error {
	id := c.Params("id")
	if uuid.Validate(id) != nil {
		return badRequest(c, "expense id must be a UUID")
	}

	expense, err := h.persistence.Expenses().GetByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(expense)
}

// GetUserExpenseCount returns how many expenses a sender has logged, looked up
// by external identity.
func (h *Handlers) GetUserExpenseCount(c fiber.Ctx) error {
	externalID := c.Params("externalId")
	if externalID == "" {
		return badRequest(c, "external id is required")
	}

	user, err := h.persistence.Users().GetByExternalID(c.Context(), externalID)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	count, err := h.persistence.Expenses().CountByUser(c.Context(), user.ID)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(fiber.Map{
		"external_id":   externalID,
		"expense_count": count,
	})
}
