package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus represents the approval lifecycle of a persisted expense.
type ExpenseStatus string

const (
	ExpenseStatusPending     ExpenseStatus = "pending"
	ExpenseStatusApproved    ExpenseStatus = "approved"
	ExpenseStatusNotApproved ExpenseStatus = "not_approved"
)

// Expense is the persisted expense entity owned by the relational store.
type Expense struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"      validate:"required"`
	Status      ExpenseStatus   `json:"status"       validate:"required,oneof=pending approved not_approved"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"     validate:"required,len=3"`
	Description string          `json:"description,omitempty"`
	Concept     Concept         `json:"concept"      validate:"required"`
	ExpenseDate time.Time       `json:"expense_date"`
	FileRef     string          `json:"file_ref,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// User is the persisted sender identity, keyed by the unique external ID.
// Name fields are refreshed last-write-wins on every upsert.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id" validate:"required"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
