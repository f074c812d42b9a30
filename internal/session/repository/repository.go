package repository

import (
	"context"
	"time"

	"finboard/internal/session/domain"
)

// Repository is the session persistence contract.
// Implementations return (nil, nil) for missing rows; errors are store failures only.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	// Terminate marks the session inactive and stamps the termination time.
	// Terminating an already-inactive session is not an error.
	Terminate(ctx context.Context, id string, at time.Time) error
	UpdateLastActivity(ctx context.Context, id string, at time.Time) error
}
