package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jpalomar/gastobot/pkg/models"
	"github.com/jpalomar/gastobot/pkg/persistence"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// Upsert inserts the user or refreshes the name fields on the unique external
// ID, last write wins. Two concurrent turns for the same user converge on the
// same row through the ON CONFLICT clause; no application-level locking.
func (r *UserRepository) Upsert(ctx context.Context, user models.User) (models.User, error) {
	if user.ExternalID == "" {
		return models.User{}, persistence.ErrMissingExternalID
	}

	query := `
		INSERT INTO users (id, external_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE SET
			username = EXCLUDED.username
		  , first_name = EXCLUDED.first_name
		  , last_name = EXCLUDED.last_name
		RETURNING id, external_id, username, first_name, last_name, created_at
	`

	row := r.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		user.ExternalID,
		nullString(user.Username),
		nullString(user.FirstName),
		nullString(user.LastName),
	)

	var (
		stored    models.User
		username  sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
	)

	err := row.Scan(&stored.ID, &stored.ExternalID, &username, &firstName, &lastName, &stored.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to upsert user %s: %w", user.ExternalID, err)
	}

	stored.Username = username.String
	stored.FirstName = firstName.String
	stored.LastName = lastName.String

	return stored, nil
}

// GetByExternalID returns the stored user for an external identity.
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (models.User, error) {
	query := `
		SELECT id, external_id, username, first_name, last_name, created_at
		FROM users
		WHERE external_id = $1
	`

	var (
		stored    models.User
		username  sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, externalID).
		Scan(&stored.ID, &stored.ExternalID, &username, &firstName, &lastName, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, persistence.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("failed to query user %s: %w", externalID, err)
	}

	stored.Username = username.String
	stored.FirstName = firstName.String
	stored.LastName = lastName.String

	return stored, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
