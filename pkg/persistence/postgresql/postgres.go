// Package postgresql provides PostgreSQL persistence for users, expenses, and
// read-only status queries.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
	"github.com/jpalomar/gastobot/pkg/persistence"
	"github.com/jpalomar/gastobot/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db          *sql.DB
	logger      *slog.Logger
	userRepo    *UserRepository
	expenseRepo *ExpenseRepository
	queryRunner *StatusQueryRepository
}

// NewPersistence connects, runs migrations, and wires the repositories.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:          database,
		logger:      logger,
		userRepo:    NewUserRepository(database, logger),
		expenseRepo: NewExpenseRepository(database, logger),
		queryRunner: NewStatusQueryRepository(database, logger),
	}, nil
}

func (p *Persistence) Users() persistence.UserRepository {
	return p.userRepo
}

func (p *Persistence) Expenses() persistence.ExpenseRepository {
	return p.expenseRepo
}

func (p *Persistence) StatusQueries() persistence.StatusQueryRunner {
	return p.queryRunner
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
