package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"finboard/internal/authz/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a role/permission repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListRolesForUser returns the user's roles in assignment order. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListRolesForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.label
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY ur.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Label); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// ListPermissionsForRoles returns the distinct permissions granted to the roles.
func (r *PostgresRepository) ListPermissionsForRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT permission FROM role_permissions WHERE role_id = ANY($1) ORDER BY permission`,
		pq.Array(roleIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// EnsureRole inserts the role if it does not exist and returns its id either way.
func (r *PostgresRepository) EnsureRole(ctx context.Context, id, name, label string) (string, error) {
	var roleID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO roles (id, name, label, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE SET label = EXCLUDED.label
		 RETURNING id`, id, name, label, time.Now().UTC()).Scan(&roleID)
	return roleID, err
}

// GrantPermission grants the permission to the role. Conflicts (already granted) are ignored.
func (r *PostgresRepository) GrantPermission(ctx context.Context, roleID, permission string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO role_permissions (role_id, permission, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`, roleID, permission, time.Now().UTC())
	return err
}

// AssignRole links the user to the role. Conflicts (already assigned) are ignored.
func (r *PostgresRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`, userID, roleID, time.Now().UTC())
	return err
}
