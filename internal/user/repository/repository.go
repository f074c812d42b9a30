package repository

import (
	"context"
	"time"

	"finboard/internal/user/domain"
)

// Repository is the user persistence contract.
// Implementations return (nil, nil) for missing rows; errors are store failures only.
type Repository interface {
	// GetByIdentifier returns the non-deleted user whose username or email
	// equals identifier, or nil if none exists.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateLastLogin stamps the user's last successful login time and source IP.
	UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error
}
