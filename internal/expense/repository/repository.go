// Package repository persists expenses.
package repository

import (
	"context"

	"finboard/internal/expense/domain"
)

// ListFilter narrows List results. Zero values mean no filtering; Limit and
// Offset are applied after filtering, newest incurred date first.
type ListFilter struct {
	Category string
	Limit    int
	Offset   int
}

// Repository is the expense persistence contract.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]*domain.Expense, error)
	GetByID(ctx context.Context, id int64) (*domain.Expense, error)
	Create(ctx context.Context, e *domain.Expense) error
	Update(ctx context.Context, id int64, p domain.Patch) (*domain.Expense, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
