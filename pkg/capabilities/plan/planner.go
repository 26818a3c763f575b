// Package plan adapts the external planning policy to the orchestrator. The
// planner only ever sees a summary of the state: presence flags and small
// scalars, never full payloads.
package plan

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jpalomar/gastobot/pkg/models"
)

// Backend is the external policy that picks the next action. It receives the
// state summary and returns one of the four action values as raw text.
type Backend interface {
	PlanNextAction(ctx context.Context, summary Summary) (string, error)
}

// Summary is the bounded view of a turn the planner is allowed to see.
type Summary struct {
	HasUserInput    bool `json:"has_user_input"`
	HasFileRef      bool `json:"has_file_ref"`
	HasReceiptDraft bool `json:"has_receipt_draft"`
	HasExpenseID    bool `json:"has_expense_id"`
	StatusRowsCount int  `json:"status_rows_count"`
}

// Summarize reduces a state to the planner's view.
func Summarize(state models.WorkflowState) Summary {
	return Summary{
		HasUserInput:    state.UserInput != "",
		HasFileRef:      state.FileRef != "",
		HasReceiptDraft: state.ReceiptDraft != nil,
		HasExpenseID:    state.ExpenseID != "",
		StatusRowsCount: len(state.StatusRows),
	}
}

// Planner implements workflow.Planner on an external policy backend.
type Planner struct {
	backend Backend
	logger  *slog.Logger
}

func NewPlanner(logger *slog.Logger, backend Backend) *Planner {
	return &Planner{backend: backend, logger: logger}
}

// Plan asks the backend for the next action. The raw reply is passed through
// as-is; the router normalizes anything outside the closed set.
func (p *Planner) Plan(ctx context.Context, state models.WorkflowState) (models.Action, error) {
	summary := Summarize(state)

	raw, err := p.backend.PlanNextAction(ctx, summary)
	if err != nil {
		return "", err
	}

	action := models.Action(strings.TrimSpace(raw))

	if _, ok := models.ParseAction(string(action)); !ok {
		p.logger.WarnContext(ctx, "Planner returned out-of-set action", "raw", raw)
	}

	return action, nil
}
