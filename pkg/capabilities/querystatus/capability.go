// Package querystatus turns a user's free-text status question into vetted
// read-only statements and runs them against the relational store.
package querystatus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jpalomar/gastobot/pkg/events"
	"github.com/jpalomar/gastobot/pkg/eventbus"
	"github.com/jpalomar/gastobot/pkg/models"
	"github.com/jpalomar/gastobot/pkg/persistence"
)

// Backend synthesizes candidate query statements from the user's text and
// identity context. A nil slice means the backend had nothing to ask.
type Backend interface {
	StatusQueries(ctx context.Context, userText string, identity models.UserIdentity) ([]string, error)
}

// Capability runs the candidates that survive the read-only safety filter.
// Execution is fail-closed: the first store error aborts the remaining
// statements and the whole batch resolves to an empty result set.
type Capability struct {
	backend   Backend
	runner    persistence.StatusQueryRunner
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func New(logger *slog.Logger, backend Backend, runner persistence.StatusQueryRunner) *Capability {
	return &Capability{
		backend: backend,
		runner:  runner,
		logger:  logger,
	}
}

// WithEventPublisher attaches an optional publisher for rejected-statement audit events.
func (c *Capability) WithEventPublisher(publisher eventbus.EventPublisher) *Capability {
	c.publisher = publisher

	return c
}

func (c *Capability) Name() models.Action {
	return models.ActionQueryStatus
}

// Execute sets StatusRows (possibly empty) when the backend produced
// candidates, and leaves the state unchanged otherwise. StatusRows is set at
// most once per turn.
func (c *Capability) Execute(ctx context.Context, state models.WorkflowState) (models.WorkflowState, error) {
	if state.StatusRows != nil {
		return state, nil
	}

	candidates, err := c.backend.StatusQueries(ctx, state.UserInput, state.Identity)
	if err != nil {
		return state, fmt.Errorf("status query synthesis failed: %w", err)
	}

	if candidates == nil {
		return state, nil
	}

	accepted := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		statement := StripDialectLabel(candidate)

		if !IsReadOnlyStatement(statement) {
			c.logger.WarnContext(ctx, "Dropping non-read-only status statement", "statement", candidate)
			c.publishRejection(ctx, state.TurnID, candidate)

			continue
		}

		accepted = append(accepted, statement)
	}

	rows := make([]models.StatusRow, 0)

	for _, statement := range accepted {
		result, err := c.runner.RunSelect(ctx, statement)
		if err != nil {
			// Fail closed: no partial batches.
			c.logger.WarnContext(ctx, "Status query failed, aborting batch", "error", err)

			return state.WithStatusRows([]models.StatusRow{}), nil
		}

		rows = append(rows, result...)
	}

	return state.WithStatusRows(rows), nil
}

// StripDialectLabel removes a leading label such as "sql:" from a candidate statement.
func StripDialectLabel(statement string) string {
	trimmed := strings.TrimSpace(statement)

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "sql:") {
		return strings.TrimSpace(trimmed[len("sql:"):])
	}

	return trimmed
}

// IsReadOnlyStatement reports whether the trimmed statement starts with
// SELECT or WITH, case-insensitively. Anything else must never reach the store.
func IsReadOnlyStatement(statement string) bool {
	upper := strings.ToUpper(strings.TrimSpace(statement))

	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}

func (c *Capability) publishRejection(ctx context.Context, turnID, statement string) {
	if c.publisher == nil {
		return
	}

	event := events.QueryRejected{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      events.QueryRejectedEvent,
			Timestamp: time.Now().UTC(),
			TurnID:    turnID,
		},
		Statement: statement,
	}

	if err := c.publisher.Publish(ctx, turnID, event); err != nil {
		c.logger.DebugContext(ctx, "Failed to publish query rejection", "error", err)
	}
}
