// Package render composes the final user-facing reply. It is the terminal
// capability: the orchestrator never routes away from it, and it always
// leaves ResponseText set.
package render

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jpalomar/gastobot/pkg/models"
)

// Backend composes natural-language reply text from the full turn state.
type Backend interface {
	RenderResponse(ctx context.Context, state models.WorkflowState) (string, error)
}

type Capability struct {
	backend  Backend
	fallback string
	logger   *slog.Logger
}

func New(logger *slog.Logger, backend Backend, fallback string) *Capability {
	return &Capability{
		backend:  backend,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *Capability) Name() models.Action {
	return models.ActionRenderAndPost
}

// Execute always returns a state with ResponseText set; a failing or empty
// backend reply is substituted with the fixed fallback string.
func (c *Capability) Execute(ctx context.Context, state models.WorkflowState) (models.WorkflowState, error) {
	text, err := c.backend.RenderResponse(ctx, state)
	if err != nil {
		c.logger.WarnContext(ctx, "Render backend failed, using fallback reply", "error", err)

		return state.WithResponseText(c.fallback), nil
	}

	if strings.TrimSpace(text) == "" {
		return state.WithResponseText(c.fallback), nil
	}

	return state.WithResponseText(text), nil
}
