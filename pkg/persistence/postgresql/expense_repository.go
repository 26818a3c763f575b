package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jpalomar/gastobot/pkg/models"
	"github.com/jpalomar/gastobot/pkg/persistence"
	"github.com/shopspring/decimal"
)

// ExpenseRepository handles expense-related database operations. Every write
// is a single-row statement so concurrent turns never block each other.
type ExpenseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExpenseRepository creates a new expense repository.
func NewExpenseRepository(db *sql.DB, logger *slog.Logger) *ExpenseRepository {
	return &ExpenseRepository{db: db, logger: logger}
}

// Insert creates a new expense row.
func (r *ExpenseRepository) Insert(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, status, total, currency, description, concept, expense_date, file_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		expense.ID,
		expense.UserID,
		string(expense.Status),
		expense.Total.StringFixed(2),
		expense.Currency,
		nullString(expense.Description),
		string(expense.Concept),
		expense.ExpenseDate,
		nullString(expense.FileRef),
	).Scan(&expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return persistence.NewExpenseError("Insert", expense.ID, err)
	}

	return nil
}

// Update rewrites the normalized fields of the row matching id and owning
// user. Status is preserved; approval is not this core's decision. Reports
// whether a row matched so the caller can fall through to insert.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) (bool, error) {
	query := `
		UPDATE expenses SET
			total = $1
		  , currency = $2
		  , description = $3
		  , concept = $4
		  , expense_date = $5
		  , file_ref = COALESCE(NULLIF($6, ''), file_ref)
		  , updated_at = now()
		WHERE id = $7 AND user_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		expense.Total.StringFixed(2),
		expense.Currency,
		nullString(expense.Description),
		string(expense.Concept),
		expense.ExpenseDate,
		expense.FileRef,
		expense.ID,
		expense.UserID,
	)
	if err != nil {
		return false, persistence.NewExpenseError("Update", expense.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, persistence.NewExpenseError("Update", expense.ID, err)
	}

	return affected > 0, nil
}

// GetByID returns a single expense row.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	query := `
		SELECT
			id
		  , user_id
		  , status
		  , total
		  , currency
		  , description
		  , concept
		  , expense_date
		  , file_ref
		  , created_at
		  , updated_at
		FROM expenses
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	expense, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewExpenseError("GetByID", id, persistence.ErrExpenseNotFound)
		}

		return nil, persistence.NewExpenseError("GetByID", id, err)
	}

	return expense, nil
}

// CountByUser returns the number of expenses owned by a user.
func (r *ExpenseRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses for user %s: %w", userID, err)
	}

	return count, nil
}

func scanExpense(row *sql.Row) (*models.Expense, error) {
	var (
		expense     models.Expense
		status      string
		total       string
		description sql.NullString
		concept     sql.NullString
		fileRef     sql.NullString
		expenseDate time.Time
	)

	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&status,
		&total,
		&expense.Currency,
		&description,
		&concept,
		&expenseDate,
		&fileRef,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	expense.Status = models.ExpenseStatus(status)
	expense.Description = description.String
	expense.Concept = models.Concept(concept.String)
	expense.FileRef = fileRef.String
	expense.ExpenseDate = expenseDate

	parsed, err := parseDecimal(total)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored total %q: %w", total, err)
	}

	expense.Total = parsed

	return &expense, nil
}

func parseDecimal(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}
