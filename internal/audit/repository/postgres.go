package repository

import (
	"context"
	"database/sql"

	"finboard/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a login-attempt repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends the attempt. The attempt must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.LoginAttempt) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_attempts (id, identifier, user_id, ip_address, user_agent, success, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Identifier,
		sql.NullString{String: a.UserID, Valid: a.UserID != ""},
		a.IPAddress, a.UserAgent, a.Success, a.Reason, a.CreatedAt)
	return err
}
