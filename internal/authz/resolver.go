// Package authz resolves a user into the role and permission view used for
// per-request authorization decisions.
package authz

import (
	"context"

	"finboard/internal/authz/domain"
)

// GrantReader is the slice of the role/permission repository the resolver reads.
type GrantReader interface {
	ListRolesForUser(ctx context.Context, userID string) ([]domain.Role, error)
	ListPermissionsForRoles(ctx context.Context, roleIDs []string) ([]string, error)
}

// Resolver computes the permission set granted to a user through role
// assignments. Results are request-scoped; nothing is cached across requests.
type Resolver struct {
	repo GrantReader
}

// NewResolver returns a Resolver backed by the given role/permission repository.
func NewResolver(repo GrantReader) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the role names and permission strings for the user.
// A user with no role assignments resolves to empty sets, not an error.
func (r *Resolver) Resolve(ctx context.Context, userID string) (roles []string, permissions []string, err error) {
	assigned, err := r.repo.ListRolesForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(assigned) == 0 {
		return nil, nil, nil
	}
	roleIDs := make([]string, len(assigned))
	roles = make([]string, len(assigned))
	for i, role := range assigned {
		roleIDs[i] = role.ID
		roles[i] = role.Name
	}
	permissions, err = r.repo.ListPermissionsForRoles(ctx, roleIDs)
	if err != nil {
		return nil, nil, err
	}
	return roles, permissions, nil
}

// RoleLabel returns a display label for the user's primary (first-assigned)
// role, or "" when the user holds none.
func RoleLabel(assigned []domain.Role) string {
	if len(assigned) == 0 {
		return ""
	}
	if assigned[0].Label != "" {
		return assigned[0].Label
	}
	return assigned[0].Name
}
