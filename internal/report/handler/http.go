// Package handler exposes the reporting endpoints. Query parameters arrive
// already coerced and clamped by the route schema; handlers just read them.
package handler

import (
	"context"

	"finboard/internal/httpapi"
	"finboard/internal/report/repository"
)

// Handler serves the report endpoints.
type Handler struct {
	repo repository.Repository
}

// NewHandler returns a Handler over the given repository.
func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// RevenueTrend returns per-day totals for the requested trailing period.
func (h *Handler) RevenueTrend(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	days := req.Params.Int("period_days")
	points, err := h.repo.RevenueTrend(ctx, days)
	if err != nil {
		return nil, err
	}
	return map[string]any{"period_days": days, "points": points}, nil
}

// CategoryPerformance returns the top spending categories.
func (h *Handler) CategoryPerformance(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	limit := req.Params.Int("limit")
	categories, err := h.repo.CategoryPerformance(ctx, limit)
	if err != nil {
		return nil, err
	}
	return map[string]any{"limit": limit, "categories": categories}, nil
}

// CashFlow returns monthly outgoing totals for the requested trailing period.
func (h *Handler) CashFlow(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	days := req.Params.Int("period_days")
	months, err := h.repo.CashFlow(ctx, days)
	if err != nil {
		return nil, err
	}
	return map[string]any{"period_days": days, "months": months}, nil
}
