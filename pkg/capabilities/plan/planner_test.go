package plan

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalomar/gastobot/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeBackend struct {
	reply   string
	err     error
	summary Summary
}

func (b *fakeBackend) PlanNextAction(_ context.Context, summary Summary) (string, error) {
	b.summary = summary

	return b.reply, b.err
}

func TestSummarize(t *testing.T) {
	state := models.WorkflowState{
		TurnID:       "t-1",
		UserInput:    "show my expenses",
		FileRef:      "telegram/1/a.jpg",
		ReceiptDraft: &models.ReceiptDraft{IsReceipt: true},
		ExpenseID:    "expense-1",
		StatusRows:   []models.StatusRow{{"total": "1"}, {"total": "2"}},
	}

	summary := Summarize(state)

	assert.True(t, summary.HasUserInput)
	assert.True(t, summary.HasFileRef)
	assert.True(t, summary.HasReceiptDraft)
	assert.True(t, summary.HasExpenseID)
	assert.Equal(t, 2, summary.StatusRowsCount)

	empty := Summarize(models.WorkflowState{TurnID: "t-2"})
	assert.Equal(t, Summary{}, empty)
}

func TestPlan_TrimsAndPassesThrough(t *testing.T) {
	backend := &fakeBackend{reply: "  extract_receipt\n"}
	planner := NewPlanner(testLogger(), backend)

	action, err := planner.Plan(context.Background(), models.WorkflowState{FileRef: "telegram/1/a.jpg"})
	require.NoError(t, err)

	assert.Equal(t, models.ActionExtractReceipt, action)
	assert.True(t, backend.summary.HasFileRef)
}

func TestPlan_OutOfSetValueStillReturned(t *testing.T) {
	// The router downstream is the normalizer; the planner only logs.
	planner := NewPlanner(testLogger(), &fakeBackend{reply: "make_coffee"})

	action, err := planner.Plan(context.Background(), models.WorkflowState{})
	require.NoError(t, err)

	assert.Equal(t, models.Action("make_coffee"), action)
}

func TestPlan_BackendErrorPropagates(t *testing.T) {
	planner := NewPlanner(testLogger(), &fakeBackend{err: errors.New("model unavailable")})

	_, err := planner.Plan(context.Background(), models.WorkflowState{})
	assert.Error(t, err)
}
