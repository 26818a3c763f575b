package workflow

import "github.com/jpalomar/gastobot/pkg/models"

// Route maps a planner decision to the capability that handles it. Any value
// outside the closed set, including the empty action, routes to the terminal
// render action. Pure function: same input, same output.
func Route(action models.Action) models.Action {
	switch action {
	case models.ActionExtractReceipt, models.ActionUpsertExpense, models.ActionQueryStatus:
		return action
	case models.ActionRenderAndPost:
		return models.ActionRenderAndPost
	default:
		return models.ActionRenderAndPost
	}
}
