// Package handler exposes expense CRUD over the HTTP envelope.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"finboard/internal/expense/domain"
	"finboard/internal/expense/repository"
	"finboard/internal/httpapi"
)

// amountPattern accepts a plain decimal with up to two fraction digits,
// matching the NUMERIC(12,2) column.
var amountPattern = regexp.MustCompile(`^\d{1,10}(\.\d{1,2})?$`)

// Handler serves the expense endpoints.
type Handler struct {
	repo repository.Repository
}

// NewHandler returns a Handler over the given repository.
func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns expenses, optionally filtered by category, paged by the
// coerced limit/offset parameters.
func (h *Handler) List(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	expenses, err := h.repo.List(ctx, repository.ListFilter{
		Category: req.Params.Get("category"),
		Limit:    req.Params.Int("limit"),
		Offset:   req.Params.Int("offset"),
	})
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []*domain.Expense{}
	}
	return map[string]any{"expenses": expenses}, nil
}

// Get returns one expense by its numeric path id.
func (h *Handler) Get(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	e, err := h.repo.GetByID(ctx, int64(req.Params.Int("id")))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, notFound(req.Params.Int("id"))
	}
	return e, nil
}

type createRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	IncurredOn  string `json:"incurred_on"`
}

// Create inserts a new expense and answers 201 with the stored row.
func (h *Handler) Create(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	var body createRequest
	if err := req.DecodeBody(&body); err != nil {
		return nil, err
	}
	body.Category = strings.TrimSpace(body.Category)
	if body.Category == "" {
		return nil, httpapi.NewValidationError("category is required")
	}
	if !amountPattern.MatchString(body.Amount) {
		return nil, httpapi.NewValidationError("amount must be a decimal with at most two fraction digits")
	}
	if _, err := time.Parse("2006-01-02", body.IncurredOn); err != nil {
		return nil, httpapi.NewValidationError("incurred_on must be a YYYY-MM-DD date")
	}

	now := time.Now().UTC()
	e := &domain.Expense{
		Category:    body.Category,
		Description: body.Description,
		Amount:      body.Amount,
		IncurredOn:  body.IncurredOn,
		CreatedBy:   auth.Identity.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return &httpapi.Result{Status: http.StatusCreated, Data: e}, nil
}

type updateRequest struct {
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Amount      *string `json:"amount"`
	IncurredOn  *string `json:"incurred_on"`
}

// Update applies a sparse patch: only the fields present in the body change.
func (h *Handler) Update(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	var body updateRequest
	if err := req.DecodeBody(&body); err != nil {
		return nil, err
	}
	patch := domain.Patch{
		Category:    body.Category,
		Description: body.Description,
		Amount:      body.Amount,
		IncurredOn:  body.IncurredOn,
	}
	if patch.Empty() {
		return nil, httpapi.NewValidationError("at least one field must be provided")
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		return nil, httpapi.NewValidationError("category cannot be empty")
	}
	if patch.Amount != nil && !amountPattern.MatchString(*patch.Amount) {
		return nil, httpapi.NewValidationError("amount must be a decimal with at most two fraction digits")
	}
	if patch.IncurredOn != nil {
		if _, err := time.Parse("2006-01-02", *patch.IncurredOn); err != nil {
			return nil, httpapi.NewValidationError("incurred_on must be a YYYY-MM-DD date")
		}
	}

	id := int64(req.Params.Int("id"))
	e, err := h.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, notFound(int(id))
	}
	return e, nil
}

// Delete soft-deletes the expense. Deleting an unknown id answers 404.
func (h *Handler) Delete(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	id := req.Params.Int("id")
	ok, err := h.repo.Delete(ctx, int64(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(id)
	}
	return map[string]any{"deleted": id}, nil
}

func notFound(id int) *httpapi.Error {
	return httpapi.NewError(httpapi.CodeNotFound, fmt.Sprintf("expense %d not found", id), http.StatusNotFound)
}
