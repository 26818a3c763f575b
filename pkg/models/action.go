// Package models defines the core domain models for the expense-logging workflow.
package models

// Action is the closed set of routing values the planner may return.
type Action string

const (
	ActionExtractReceipt Action = "extract_receipt"
	ActionUpsertExpense  Action = "upsert_expense"
	ActionQueryStatus    Action = "query_status"
	ActionRenderAndPost  Action = "render_and_post"
)

// ParseAction validates a raw action value against the closed set.
func ParseAction(raw string) (Action, bool) {
	switch Action(raw) {
	case ActionExtractReceipt, ActionUpsertExpense, ActionQueryStatus, ActionRenderAndPost:
		return Action(raw), true
	default:
		return "", false
	}
}

// IsTerminal reports whether the action ends the turn.
func (a Action) IsTerminal() bool {
	return a == ActionRenderAndPost
}
