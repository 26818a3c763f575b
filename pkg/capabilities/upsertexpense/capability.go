// Package upsertexpense normalizes a receipt draft into a persistence-ready
// expense and writes it through the user/expense repositories.
package upsertexpense

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jpalomar/gastobot/pkg/models"
	"github.com/jpalomar/gastobot/pkg/persistence"
	"github.com/shopspring/decimal"
)

const (
	defaultCurrency = "USD"
	dateLayout      = "2006-01-02"
)

// Capability creates or updates the turn's expense. Creation is not
// idempotent: two calls without a prior expense id create two rows. Updates
// are idempotent, filtered by id and owning user.
type Capability struct {
	users    persistence.UserRepository
	expenses persistence.ExpenseRepository
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

func New(logger *slog.Logger, users persistence.UserRepository, expenses persistence.ExpenseRepository) *Capability {
	return &Capability{
		users:    users,
		expenses: expenses,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		logger:   logger,
	}
}

// SetClock overrides the current-date source. Test hook.
func (c *Capability) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Capability) Name() models.Action {
	return models.ActionUpsertExpense
}

// Execute sets ExpenseID on success and leaves the state unchanged otherwise.
// Without a draft flagged as a real receipt there is nothing to persist and
// the call is a no-op; an expense is never fabricated from absent data.
func (c *Capability) Execute(ctx context.Context, state models.WorkflowState) (models.WorkflowState, error) {
	draft := state.ReceiptDraft
	if draft == nil || !draft.IsReceipt {
		return state, nil
	}

	if state.Identity.ExternalID == "" {
		return state, persistence.ErrMissingExternalID
	}

	total, ok := resolveTotal(draft)
	if !ok {
		c.logger.WarnContext(ctx, "Draft total is not numeric, skipping upsert", "total", draft.Total)

		return state, nil
	}

	user, err := c.users.Upsert(ctx, models.User{
		ExternalID: state.Identity.ExternalID,
		Username:   state.Identity.Username,
		FirstName:  state.Identity.FirstName,
		LastName:   state.Identity.LastName,
	})
	if err != nil {
		return state, fmt.Errorf("failed to upsert user: %w", err)
	}

	expense := &models.Expense{
		UserID:      user.ID,
		Status:      models.ExpenseStatusPending,
		Total:       total,
		Currency:    normalizeCurrency(draft.Currency),
		Description: resolveDescription(draft, state.UserInput),
		Concept:     models.ConceptFromText(draft.Category),
		ExpenseDate: c.resolveDate(draft.ReceiptDate),
		FileRef:     state.FileRef,
	}

	if state.ExpenseID != "" {
		expense.ID = state.ExpenseID

		updated, err := c.expenses.Update(ctx, expense)
		if err != nil {
			return state, fmt.Errorf("failed to update expense: %w", err)
		}

		if updated {
			return state, nil
		}
		// No matching row; fall through to insert.
	}

	expense.ID = uuid.New().String()

	err = c.validate.Struct(expense)
	if err != nil {
		return state, fmt.Errorf("normalized expense failed validation: %w", err)
	}

	err = c.expenses.Insert(ctx, expense)
	if err != nil {
		return state, fmt.Errorf("failed to insert expense: %w", err)
	}

	return state.WithExpenseID(expense.ID), nil
}

// resolveTotal coerces the draft total, falling back to subtotal+tax+tip when
// the total is missing. Non-numeric input aborts the upsert.
func resolveTotal(draft *models.ReceiptDraft) (decimal.Decimal, bool) {
	if draft.Total != "" {
		total, err := decimal.NewFromString(string(draft.Total))
		if err != nil {
			return decimal.Decimal{}, false
		}

		return total.Round(2), true
	}

	parts := []models.Amount{draft.Subtotal, draft.Tax, draft.Tip}
	sum := decimal.Zero
	present := false

	for _, part := range parts {
		if part == "" {
			continue
		}

		value, err := decimal.NewFromString(string(part))
		if err != nil {
			return decimal.Decimal{}, false
		}

		sum = sum.Add(value)
		present = true
	}

	if !present {
		return decimal.Decimal{}, false
	}

	return sum.Round(2), true
}

// normalizeCurrency uppercases and forces exactly three characters, defaulting
// to USD when the draft carries none.
func normalizeCurrency(raw string) string {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return defaultCurrency
	}

	if len(currency) > 3 {
		return currency[:3]
	}

	for len(currency) < 3 {
		currency += " "
	}

	return currency
}

func resolveDescription(draft *models.ReceiptDraft, userInput string) string {
	if draft.MerchantName != "" {
		return draft.MerchantName
	}

	if draft.PaymentMethod != "" {
		return draft.PaymentMethod
	}

	return userInput
}

// resolveDate parses the ISO receipt date, falling back to the current
// calendar date when missing or unparsable.
func (c *Capability) resolveDate(raw string) time.Time {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err == nil {
		return parsed
	}

	now := c.now().UTC()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
