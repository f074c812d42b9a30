// Package handler serves readiness for load balancers and CI.
package handler

import (
	"context"

	"finboard/internal/httpapi"
)

// Pinger checks the backing store. *sql.DB satisfies it directly.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves the health endpoint.
type Handler struct {
	db Pinger
}

// NewHandler returns a Handler. db may be nil; the endpoint then reports
// liveness only.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Check reports service health. The endpoint is public and stays 200 even
// when the database is down so that liveness probes don't recycle the
// process on a store outage; the database field carries the degradation.
func (h *Handler) Check(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	dbStatus := "skipped"
	if h.db != nil {
		dbStatus = "ok"
		if err := h.db.PingContext(ctx); err != nil {
			dbStatus = "unreachable"
		}
	}
	return map[string]string{"status": "ok", "database": dbStatus}, nil
}
