// Package persistence defines the storage contracts for users, expenses, and
// read-only status queries.
package persistence

import (
	"context"

	"github.com/jpalomar/gastobot/pkg/models"
)

// UserRepository persists sender identities keyed by external ID.
type UserRepository interface {
	// Upsert inserts the user or refreshes the name fields last-write-wins on
	// the unique external ID, returning the stored row.
	Upsert(ctx context.Context, user models.User) (models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (models.User, error)
}

// ExpenseRepository persists expense rows. Writes are single-row statements;
// concurrent turns for the same user are resolved by the store's uniqueness
// constraints, not by application locking.
type ExpenseRepository interface {
	Insert(ctx context.Context, expense *models.Expense) error
	// Update rewrites the normalized fields of the row matching id and owning
	// user, preserving status. It reports whether a row matched.
	Update(ctx context.Context, expense *models.Expense) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// StatusQueryRunner executes an already-vetted read-only statement and
// returns its rows keyed by column name. Callers are responsible for the
// SELECT/WITH safety check; the runner never receives unvetted input.
type StatusQueryRunner interface {
	RunSelect(ctx context.Context, statement string) ([]models.StatusRow, error)
}

// Persistence aggregates the storage surface the bot needs.
type Persistence interface {
	Users() UserRepository
	Expenses() ExpenseRepository
	StatusQueries() StatusQueryRunner
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
