package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"finboard/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, status,
	locked_until, requires_mfa, last_login_at, last_login_ip, deleted_at, created_at, updated_at`

// GetByIdentifier returns the non-deleted user matching username or email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE (username = $1 OR email = $1) AND deleted_at IS NULL`, identifier)
	return scanUser(row)
}

// GetByID returns the user for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, first_name, last_name, status,
			locked_until, requires_mfa, last_login_at, last_login_ip, deleted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Status),
		timeToNullTime(u.LockedUntil), u.RequiresMFA, timeToNullTime(u.LastLoginAt),
		sql.NullString{String: u.LastLoginIP, Valid: u.LastLoginIP != ""},
		timeToNullTime(u.DeletedAt), u.CreatedAt, u.UpdatedAt)
	return err
}

// UpdateLastLogin stamps the user's last login time and IP. Returns an error if the update fails.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $2, last_login_ip = $3, updated_at = $2 WHERE id = $1`,
		id, at, sql.NullString{String: ip, Valid: ip != ""})
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var status string
	var lockedUntil, lastLoginAt, deletedAt sql.NullTime
	var lastLoginIP sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&status, &lockedUntil, &u.RequiresMFA, &lastLoginAt, &lastLoginIP, &deletedAt,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Status = domain.UserStatus(status)
	u.LockedUntil = nullTimeToPtr(lockedUntil)
	u.LastLoginAt = nullTimeToPtr(lastLoginAt)
	u.DeletedAt = nullTimeToPtr(deletedAt)
	if lastLoginIP.Valid {
		u.LastLoginIP = lastLoginIP.String
	}
	return &u, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
