package models

import "reflect"

// UserIdentity identifies the sender of a turn. ExternalID is the unique
// messaging-platform identifier and is required before anything is persisted.
type UserIdentity struct {
	ExternalID string `json:"external_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

// StatusRow is a single row returned by a status query, keyed by column name.
type StatusRow map[string]any

// WorkflowState is the immutable snapshot of one conversation turn. Capabilities
// never mutate a state in place; they derive a new snapshot through the With*
// builders. Fields are filled in monotonically over the course of a turn.
type WorkflowState struct {
	TurnID       string        `json:"turn_id"`
	UserInput    string        `json:"user_input,omitempty"`
	Identity     UserIdentity  `json:"identity"`
	FileRef      string        `json:"file_ref,omitempty"`
	ReceiptDraft *ReceiptDraft `json:"receipt_draft,omitempty"`
	ExpenseID    string        `json:"expense_id,omitempty"`
	StatusRows   []StatusRow   `json:"status_rows,omitempty"`
	NextAction   Action        `json:"next_action,omitempty"`
	ResponseText string        `json:"response_text,omitempty"`
}

// WithNextAction returns a copy carrying the planner's latest decision.
func (s WorkflowState) WithNextAction(action Action) WorkflowState {
	s.NextAction = action

	return s
}

// WithReceiptDraft returns a copy carrying the extracted draft. A nil draft
// keeps the existing one so a capability cannot null the field out.
func (s WorkflowState) WithReceiptDraft(draft *ReceiptDraft) WorkflowState {
	if draft != nil {
		s.ReceiptDraft = draft
	}

	return s
}

// WithExpenseID returns a copy carrying the persisted expense identifier.
// Once set the identifier is stable for the turn.
func (s WorkflowState) WithExpenseID(id string) WorkflowState {
	if s.ExpenseID == "" && id != "" {
		s.ExpenseID = id
	}

	return s
}

// WithStatusRows returns a copy carrying the query result. A nil slice means
// "not attempted"; callers that attempted and found nothing pass an empty slice.
func (s WorkflowState) WithStatusRows(rows []StatusRow) WorkflowState {
	if s.StatusRows == nil && rows != nil {
		s.StatusRows = rows
	}

	return s
}

// WithResponseText returns a copy carrying the final reply text.
func (s WorkflowState) WithResponseText(text string) WorkflowState {
	if s.ResponseText == "" && text != "" {
		s.ResponseText = text
	}

	return s
}

// Equal reports whether two snapshots are value-identical. The orchestrator
// uses it to detect capabilities that made no progress.
func (s WorkflowState) Equal(other WorkflowState) bool {
	return reflect.DeepEqual(s, other)
}
