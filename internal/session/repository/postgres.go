package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"finboard/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByToken returns the session for the given bearer token, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, token, refresh_token, user_id, ip_address, user_agent, device_info,
			is_active, mfa_verified, last_activity_at, terminated_at, expires_at, created_at
		 FROM sessions WHERE token = $1`, token)
	var s domain.Session
	var ip, ua, device sql.NullString
	var lastActivity, terminated sql.NullTime
	err := row.Scan(&s.ID, &s.Token, &s.RefreshToken, &s.UserID, &ip, &ua, &device,
		&s.IsActive, &s.MFAVerified, &lastActivity, &terminated, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.IPAddress = ip.String
	s.UserAgent = ua.String
	s.DeviceInfo = device.String
	s.LastActivityAt = nullTimeToPtr(lastActivity)
	s.TerminatedAt = nullTimeToPtr(terminated)
	return &s, nil
}

// Create persists the session to the database. The session must have ID and Token set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, refresh_token, user_id, ip_address, user_agent,
			device_info, is_active, mfa_verified, last_activity_at, terminated_at, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.Token, s.RefreshToken, s.UserID,
		sql.NullString{String: s.IPAddress, Valid: s.IPAddress != ""},
		sql.NullString{String: s.UserAgent, Valid: s.UserAgent != ""},
		sql.NullString{String: s.DeviceInfo, Valid: s.DeviceInfo != ""},
		s.IsActive, s.MFAVerified, timeToNullTime(s.LastActivityAt),
		timeToNullTime(s.TerminatedAt), s.ExpiresAt, s.CreatedAt)
	return err
}

// Terminate marks the session inactive and stamps termination. Idempotent:
// the WHERE clause keeps the first termination time on repeat calls.
func (r *PostgresRepository) Terminate(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = FALSE,
			terminated_at = COALESCE(terminated_at, $2)
		 WHERE id = $1`, id, at)
	return err
}

// UpdateLastActivity sets the session's last-activity timestamp. Returns an error if the update fails.
func (r *PostgresRepository) UpdateLastActivity(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_activity_at = $2 WHERE id = $1`, id, at)
	return err
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
