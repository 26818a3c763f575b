package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithNextAction_AlwaysOverwrites(t *testing.T) {
	state := WorkflowState{TurnID: "t-1"}

	state = state.WithNextAction(ActionExtractReceipt)
	assert.Equal(t, ActionExtractReceipt, state.NextAction)

	state = state.WithNextAction(ActionRenderAndPost)
	assert.Equal(t, ActionRenderAndPost, state.NextAction)
}

func TestWithReceiptDraft_NilKeepsExisting(t *testing.T) {
	draft := &ReceiptDraft{IsReceipt: true, MerchantName: "Cafe Central"}

	state := WorkflowState{}.WithReceiptDraft(draft)
	assert.Equal(t, draft, state.ReceiptDraft)

	state = state.WithReceiptDraft(nil)
	assert.Equal(t, draft, state.ReceiptDraft)
}

func TestWithExpenseID_FirstWriteWins(t *testing.T) {
	state := WorkflowState{}.WithExpenseID("expense-1")
	assert.Equal(t, "expense-1", state.ExpenseID)

	state = state.WithExpenseID("expense-2")
	assert.Equal(t, "expense-1", state.ExpenseID)

	empty := WorkflowState{}.WithExpenseID("")
	assert.Empty(t, empty.ExpenseID)
}

func TestWithStatusRows_EmptyMeansAttempted(t *testing.T) {
	state := WorkflowState{}

	// nil rows leave the field unset
	state = state.WithStatusRows(nil)
	assert.Nil(t, state.StatusRows)

	// an empty non-nil slice records that the query ran and found nothing
	state = state.WithStatusRows([]StatusRow{})
	assert.NotNil(t, state.StatusRows)
	assert.Empty(t, state.StatusRows)

	// later results never overwrite
	state = state.WithStatusRows([]StatusRow{{"total": "10.00"}})
	assert.Empty(t, state.StatusRows)
}

func TestWithResponseText_FirstWriteWins(t *testing.T) {
	state := WorkflowState{}.WithResponseText("done")
	assert.Equal(t, "done", state.ResponseText)

	state = state.WithResponseText("something else")
	assert.Equal(t, "done", state.ResponseText)
}

func TestEqual(t *testing.T) {
	a := WorkflowState{TurnID: "t-1", UserInput: "hi"}
	b := WorkflowState{TurnID: "t-1", UserInput: "hi"}
	assert.True(t, a.Equal(b))

	c := b.WithExpenseID("expense-1")
	assert.False(t, a.Equal(c))
}
