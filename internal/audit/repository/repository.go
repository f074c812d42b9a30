package repository

import (
	"context"

	"finboard/internal/audit/domain"
)

// Repository is the login-attempt persistence contract. The table is
// append-only; no read methods exist because the core never reads it.
type Repository interface {
	Create(ctx context.Context, a *domain.LoginAttempt) error
}
