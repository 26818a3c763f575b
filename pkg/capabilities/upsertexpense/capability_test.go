package upsertexpense

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalomar/gastobot/pkg/models"
	"github.com/jpalomar/gastobot/pkg/persistence"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeUserRepository struct {
	upsertCalls int
	upsertErr   error
}

func (r *fakeUserRepository) Upsert(_ context.Context, user models.User) (models.User, error) {
	r.upsertCalls++

	if r.upsertErr != nil {
		return models.User{}, r.upsertErr
	}

	user.ID = "user-" + user.ExternalID

	return user, nil
}

func (r *fakeUserRepository) GetByExternalID(_ context.Context, externalID string) (models.User, error) {
	return models.User{ID: "user-" + externalID, ExternalID: externalID}, nil
}

type fakeExpenseRepository struct {
	inserted  []*models.Expense
	updated   []*models.Expense
	updateHit bool
	insertErr error
}

func (r *fakeExpenseRepository) Insert(_ context.Context, expense *models.Expense) error {
	if r.insertErr != nil {
		return r.insertErr
	}

	r.inserted = append(r.inserted, expense)

	return nil
}

func (r *fakeExpenseRepository) Update(_ context.Context, expense *models.Expense) (bool, error) {
	r.updated = append(r.updated, expense)

	return r.updateHit, nil
}

func (r *fakeExpenseRepository) GetByID(_ context.Context, id string) (*models.Expense, error) {
	return nil, persistence.ErrExpenseNotFound
}

func (r *fakeExpenseRepository) CountByUser(_ context.Context, _ string) (int, error) {
	return len(r.inserted), nil
}

func newTestCapability() (*Capability, *fakeUserRepository, *fakeExpenseRepository) {
	users := &fakeUserRepository{}
	expenses := &fakeExpenseRepository{}
	capability := New(testLogger(), users, expenses)

	return capability, users, expenses
}

func receiptState(draft *models.ReceiptDraft) models.WorkflowState {
	return models.WorkflowState{
		TurnID:       "t-1",
		UserInput:    "dinner with the team",
		FileRef:      "telegram/12345/20250314T120000Z_abc.jpg",
		ReceiptDraft: draft,
		Identity:     models.UserIdentity{ExternalID: "12345", Username: "jdoe", FirstName: "Jane"},
	}
}

func TestExecute_NormalizesAndInserts(t *testing.T) {
	capability, users, expenses := newTestCapability()

	state := receiptState(&models.ReceiptDraft{
		IsReceipt:    true,
		MerchantName: "Cafe Central",
		ReceiptDate:  "2025-03-14",
		Currency:     "usd",
		Total:        "19.99",
		Category:     "food",
	})

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 1, users.upsertCalls)
	require.Len(t, expenses.inserted, 1)

	expense := expenses.inserted[0]
	assert.Equal(t, "user-12345", expense.UserID)
	assert.Equal(t, models.ExpenseStatusPending, expense.Status)
	assert.True(t, expense.Total.Equal(decimal.RequireFromString("19.99")), expense.Total.String())
	assert.Equal(t, "USD", expense.Currency)
	assert.Equal(t, "Cafe Central", expense.Description)
	assert.Equal(t, models.ConceptAlimentos, expense.Concept)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), expense.ExpenseDate)
	assert.Equal(t, state.FileRef, expense.FileRef)

	assert.Equal(t, expense.ID, next.ExpenseID)
}

func TestExecute_NoDraftIsNoop(t *testing.T) {
	capability, users, expenses := newTestCapability()

	state := receiptState(nil)

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, next.Equal(state))
	assert.Zero(t, users.upsertCalls)
	assert.Empty(t, expenses.inserted)
}

func TestExecute_NotAReceiptIsNoop(t *testing.T) {
	capability, _, expenses := newTestCapability()

	state := receiptState(&models.ReceiptDraft{IsReceipt: false, Total: "19.99"})

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, next.Equal(state))
	assert.Empty(t, expenses.inserted)
}

func TestExecute_MissingExternalIDFails(t *testing.T) {
	capability, _, _ := newTestCapability()

	state := receiptState(&models.ReceiptDraft{IsReceipt: true, Total: "19.99"})
	state.Identity = models.UserIdentity{}

	_, err := capability.Execute(context.Background(), state)
	require.Error(t, err)
	assert.True(t, errors.Is(err, persistence.ErrMissingExternalID))
}

func TestExecute_NonNumericTotalIsNoop(t *testing.T) {
	capability, _, expenses := newTestCapability()

	state := receiptState(&models.ReceiptDraft{IsReceipt: true, Total: "nineteen dollars"})

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, next.Equal(state))
	assert.Empty(t, expenses.inserted)
}

func TestExecute_TotalFallsBackToComponentSum(t *testing.T) {
	capability, _, expenses := newTestCapability()

	state := receiptState(&models.ReceiptDraft{
		IsReceipt: true,
		Subtotal:  "17.50",
		Tax:       "1.49",
		Tip:       "1.00",
	})

	_, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, expenses.inserted, 1)
	assert.True(t, expenses.inserted[0].Total.Equal(decimal.RequireFromString("19.99")))
}

func TestExecute_NonNumericComponentAbortsSum(t *testing.T) {
	capability, _, expenses := newTestCapability()

	state := receiptState(&models.ReceiptDraft{
		IsReceipt: true,
		Subtotal:  "17.50",
		Tax:       "about two",
	})

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, next.Equal(state))
	assert.Empty(t, expenses.inserted)
}

func TestExecute_SecondCallUpdatesSameRow(t *testing.T) {
	capability, _, expenses := newTestCapability()

	draft := &models.ReceiptDraft{IsReceipt: true, MerchantName: "Cafe Central", Total: "19.99"}
	state := receiptState(draft)

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)
	require.NotEmpty(t, next.ExpenseID)

	// A later step in the same turn re-runs the upsert with the id already
	// on the state; the row is rewritten, not duplicated.
	expenses.updateHit = true

	again, err := capability.Execute(context.Background(), next)
	require.NoError(t, err)

	assert.Equal(t, next.ExpenseID, again.ExpenseID)
	require.Len(t, expenses.updated, 1)
	assert.Equal(t, next.ExpenseID, expenses.updated[0].ID)
	assert.Len(t, expenses.inserted, 1)
}

func TestExecute_VanishedRowFallsThroughToInsert(t *testing.T) {
	capability, _, expenses := newTestCapability()

	state := receiptState(&models.ReceiptDraft{IsReceipt: true, Total: "10.00"})
	state.ExpenseID = "gone"
	expenses.updateHit = false

	next, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, expenses.updated, 1)
	require.Len(t, expenses.inserted, 1)
	// ExpenseID is already set on the state, so the fresh insert id does not
	// replace it.
	assert.Equal(t, "gone", next.ExpenseID)
	assert.NotEqual(t, "gone", expenses.inserted[0].ID)
}

func TestExecute_DateFallsBackToToday(t *testing.T) {
	capability, _, expenses := newTestCapability()
	capability.SetClock(func() time.Time {
		return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	})

	state := receiptState(&models.ReceiptDraft{IsReceipt: true, Total: "5.00", ReceiptDate: "03/14/2025"})

	_, err := capability.Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, expenses.inserted, 1)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), expenses.inserted[0].ExpenseDate)
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "", expected: "USD"},
		{raw: "usd", expected: "USD"},
		{raw: " eur ", expected: "EUR"},
		{raw: "pesos", expected: "PES"},
		{raw: "mx", expected: "MX "},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeCurrency(tt.raw), tt.raw)
	}
}

func TestResolveDescription(t *testing.T) {
	draft := &models.ReceiptDraft{MerchantName: "Cafe Central", PaymentMethod: "visa"}
	assert.Equal(t, "Cafe Central", resolveDescription(draft, "dinner"))

	draft.MerchantName = ""
	assert.Equal(t, "visa", resolveDescription(draft, "dinner"))

	draft.PaymentMethod = ""
	assert.Equal(t, "dinner", resolveDescription(draft, "dinner"))
}
