package repository

import (
	"context"

	"finboard/internal/authz/domain"
)

// Repository is the role/permission persistence contract.
type Repository interface {
	// ListRolesForUser returns the roles assigned to the user, in assignment order.
	ListRolesForUser(ctx context.Context, userID string) ([]domain.Role, error)
	// ListPermissionsForRoles returns the distinct permission strings granted
	// to any of the given roles.
	ListPermissionsForRoles(ctx context.Context, roleIDs []string) ([]string, error)
	// EnsureRole inserts a role if missing and returns its id either way.
	EnsureRole(ctx context.Context, id, name, label string) (string, error)
	// GrantPermission grants a permission to a role; re-granting is not an error.
	GrantPermission(ctx context.Context, roleID, permission string) error
	// AssignRole links a user to a role; assigning an already-held role is not an error.
	AssignRole(ctx context.Context, userID, roleID string) error
}
