package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	authzdomain "finboard/internal/authz/domain"
	"finboard/internal/expense/domain"
	"finboard/internal/expense/repository"
	"finboard/internal/httpapi"
)

// memRepo is an in-memory expense repository for handler tests.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Expense
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, rows: make(map[int64]*domain.Expense)}
}

func (m *memRepo) List(ctx context.Context, f repository.ListFilter) ([]*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Expense
	for _, e := range m.rows {
		if e.DeletedAt != nil {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok || e.DeletedAt != nil {
		return nil, nil
	}
	return e, nil
}

func (m *memRepo) Create(ctx context.Context, e *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID
	m.nextID++
	m.rows[e.ID] = e
	return nil
}

func (m *memRepo) Update(ctx context.Context, id int64, p domain.Patch) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok || e.DeletedAt != nil {
		return nil, nil
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.IncurredOn != nil {
		e.IncurredOn = *p.IncurredOn
	}
	e.UpdatedAt = time.Now().UTC()
	return e, nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok || e.DeletedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	e.DeletedAt = &now
	return true, nil
}

func authed() *httpapi.AuthContext {
	return &httpapi.AuthContext{Identity: &authzdomain.Identity{UserID: "u1"}}
}

func jsonBody(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func createOne(t *testing.T, h *Handler, category, amount, date string) *domain.Expense {
	t.Helper()
	payload, err := h.Create(context.Background(), &httpapi.Request{
		Body: jsonBody(t, map[string]string{"category": category, "amount": amount, "incurred_on": date}),
	}, authed())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	res, ok := payload.(*httpapi.Result)
	if !ok {
		t.Fatalf("payload type %T", payload)
	}
	return res.Data.(*domain.Expense)
}

func TestCreateReturns201WithRow(t *testing.T) {
	h := NewHandler(newMemRepo())
	payload, err := h.Create(context.Background(), &httpapi.Request{
		Body: jsonBody(t, map[string]string{
			"category": "travel", "description": "taxi", "amount": "42.50", "incurred_on": "2026-08-01",
		}),
	}, authed())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	res := payload.(*httpapi.Result)
	if res.Status != http.StatusCreated {
		t.Errorf("status = %d, want 201", res.Status)
	}
	e := res.Data.(*domain.Expense)
	if e.ID == 0 || e.CreatedBy != "u1" || e.Amount != "42.50" {
		t.Errorf("expense = %+v", e)
	}
}

func TestCreateValidation(t *testing.T) {
	h := NewHandler(newMemRepo())
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing category", map[string]string{"amount": "1.00", "incurred_on": "2026-08-01"}},
		{"blank category", map[string]string{"category": "  ", "amount": "1.00", "incurred_on": "2026-08-01"}},
		{"bad amount", map[string]string{"category": "travel", "amount": "1.234", "incurred_on": "2026-08-01"}},
		{"negative amount", map[string]string{"category": "travel", "amount": "-5", "incurred_on": "2026-08-01"}},
		{"bad date", map[string]string{"category": "travel", "amount": "1.00", "incurred_on": "01/08/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Create(context.Background(), &httpapi.Request{Body: jsonBody(t, tt.body)}, authed())
			var apiErr *httpapi.Error
			if !errors.As(err, &apiErr) || apiErr.Code != httpapi.CodeValidationError {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestGetAndNotFound(t *testing.T) {
	h := NewHandler(newMemRepo())
	created := createOne(t, h, "travel", "10.00", "2026-08-01")

	req := &httpapi.Request{Params: httpapi.Params{"id": "1"}}
	payload, err := h.Get(context.Background(), req, authed())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if payload.(*domain.Expense).ID != created.ID {
		t.Errorf("got %+v", payload)
	}

	_, err = h.Get(context.Background(), &httpapi.Request{Params: httpapi.Params{"id": "99"}}, authed())
	var apiErr *httpapi.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestUpdateSparsePatch(t *testing.T) {
	h := NewHandler(newMemRepo())
	createOne(t, h, "travel", "10.00", "2026-08-01")

	// Only amount present: category and date must survive.
	payload, err := h.Update(context.Background(), &httpapi.Request{
		Params: httpapi.Params{"id": "1"},
		Body:   []byte(`{"amount":"25.00"}`),
	}, authed())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	e := payload.(*domain.Expense)
	if e.Amount != "25.00" || e.Category != "travel" || e.IncurredOn != "2026-08-01" {
		t.Errorf("expense = %+v, want only amount changed", e)
	}
}

func TestUpdateEmptyPatchRejected(t *testing.T) {
	h := NewHandler(newMemRepo())
	createOne(t, h, "travel", "10.00", "2026-08-01")

	_, err := h.Update(context.Background(), &httpapi.Request{
		Params: httpapi.Params{"id": "1"},
		Body:   []byte(`{}`),
	}, authed())
	var apiErr *httpapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != httpapi.CodeValidationError {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestUpdateUnknownIDIs404(t *testing.T) {
	h := NewHandler(newMemRepo())
	_, err := h.Update(context.Background(), &httpapi.Request{
		Params: httpapi.Params{"id": "7"},
		Body:   []byte(`{"amount":"1.00"}`),
	}, authed())
	var apiErr *httpapi.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestDeleteThenGone(t *testing.T) {
	h := NewHandler(newMemRepo())
	createOne(t, h, "travel", "10.00", "2026-08-01")

	req := &httpapi.Request{Params: httpapi.Params{"id": "1"}}
	if _, err := h.Delete(context.Background(), req, authed()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Second delete and subsequent get both answer 404.
	_, err := h.Delete(context.Background(), req, authed())
	var apiErr *httpapi.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("second delete err = %v, want 404", err)
	}
	_, err = h.Get(context.Background(), req, authed())
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("get after delete err = %v, want 404", err)
	}
}

func TestListFiltersByCategory(t *testing.T) {
	h := NewHandler(newMemRepo())
	createOne(t, h, "travel", "10.00", "2026-08-01")
	createOne(t, h, "office", "20.00", "2026-08-02")

	payload, err := h.List(context.Background(), &httpapi.Request{
		Params: httpapi.Params{"category": "office"},
	}, authed())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	expenses := payload.(map[string]any)["expenses"].([]*domain.Expense)
	if len(expenses) != 1 || expenses[0].Category != "office" {
		t.Errorf("expenses = %+v", expenses)
	}
}

func TestListEmptyIsEmptySliceNotNil(t *testing.T) {
	h := NewHandler(newMemRepo())
	payload, err := h.List(context.Background(), &httpapi.Request{Params: httpapi.Params{}}, authed())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	expenses := payload.(map[string]any)["expenses"].([]*domain.Expense)
	if expenses == nil {
		t.Error("expenses should serialize as [], not null")
	}
}
