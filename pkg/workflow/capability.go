// Package workflow drives the plan/act loop for one conversation turn.
package workflow

import (
	"context"

	"github.com/jpalomar/gastobot/pkg/models"
)

// Planner decides the next action from a summary of the current state. The
// returned value is never trusted blindly; the router normalizes anything
// outside the closed action set to the terminal render action.
type Planner interface {
	Plan(ctx context.Context, state models.WorkflowState) (models.Action, error)
}

// Capability is a named, swappable unit of behavior invoked by the
// orchestrator. Implementations return a new state snapshot and must not
// mutate the input. A failed external call resolves to the input state plus
// an error; the orchestrator contains the error and keeps the turn alive.
type Capability interface {
	Name() models.Action
	Execute(ctx context.Context, state models.WorkflowState) (models.WorkflowState, error)
}
