package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jpalomar/gastobot/pkg/models"
)

// StatusQueryRepository executes vetted read-only statements and returns rows
// keyed by column name. The SELECT/WITH safety filter runs upstream; this
// repository never sees unvetted input.
type StatusQueryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStatusQueryRepository creates a new status query repository.
func NewStatusQueryRepository(db *sql.DB, logger *slog.Logger) *StatusQueryRepository {
	return &StatusQueryRepository{db: db, logger: logger}
}

// RunSelect executes one statement and collects every row as a column-keyed map.
func (r *StatusQueryRepository) RunSelect(ctx context.Context, statement string) ([]models.StatusRow, error) {
	rows, err := r.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("failed to execute status query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	results := make([]models.StatusRow, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		err = rows.Scan(pointers...)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}

		row := make(models.StatusRow, len(columns))

		for i, column := range columns {
			value := values[i]
			if raw, ok := value.([]byte); ok {
				value = string(raw)
			}

			row[column] = value
		}

		results = append(results, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating status rows: %w", err)
	}

	return results, nil
}
