package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrUserNotFound indicates a user was not found by the given identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrExpenseNotFound indicates an expense was not found by the given identifier.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrMissingExternalID indicates an upsert was attempted without the unique external identity.
	ErrMissingExternalID = errors.New("external id is required")
)

// ExpenseError wraps expense-related errors with operation context.
type ExpenseError struct {
	Op        string // Operation being performed (e.g., "Insert", "Update")
	ExpenseID string // Expense ID if applicable
	Err       error  // Underlying error
}

func (e *ExpenseError) Error() string {
	return fmt.Sprintf("%s operation failed for expense %s: %v", e.Op, e.ExpenseID, e.Err)
}

func (e *ExpenseError) Unwrap() error {
	return e.Err
}

func (e *ExpenseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExpenseError creates a new expense error with context.
func NewExpenseError(op, expenseID string, err error) *ExpenseError {
	return &ExpenseError{
		Op:        op,
		ExpenseID: expenseID,
		Err:       err,
	}
}

// IsExpenseNotFound checks if an error indicates an expense was not found.
func IsExpenseNotFound(err error) bool {
	return errors.Is(err, ErrExpenseNotFound)
}

// IsUserNotFound checks if an error indicates a user was not found.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
