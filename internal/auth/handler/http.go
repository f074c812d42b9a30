// Package handler exposes the auth service over the HTTP envelope:
// login, logout, and the current-user view.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"finboard/internal/auth/service"
	"finboard/internal/httpapi"
	userdomain "finboard/internal/user/domain"
)

// AuthService is the slice of the auth service the handler needs.
type AuthService interface {
	Login(ctx context.Context, identifier, password string, device service.DeviceInfo) (*service.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// UserReader loads user profiles for the current-user view.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Handler serves the auth endpoints.
type Handler struct {
	svc   AuthService
	users UserReader
}

// NewHandler returns a Handler over the given service and user store.
func NewHandler(svc AuthService, users UserReader) *Handler {
	return &Handler{svc: svc, users: users}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token        string             `json:"token"`
	RefreshToken string             `json:"refresh_token"`
	ExpiresAt    string             `json:"expires_at"`
	User         service.PublicUser `json:"user"`
}

// Login authenticates the posted credentials and issues a session pair.
// Credential failures all surface the same message; locked and inactive
// accounts get their own codes since those callers are already known.
func (h *Handler) Login(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	var body loginRequest
	if err := req.DecodeBody(&body); err != nil {
		return nil, err
	}
	body.Username = strings.TrimSpace(body.Username)

	result, err := h.svc.Login(ctx, body.Username, body.Password, service.DeviceInfo{
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return nil, httpapi.NewError(httpapi.CodeInvalidCredentials, service.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		case errors.Is(err, service.ErrAccountLocked):
			return nil, httpapi.NewError(httpapi.CodeAccountLocked, "account is locked", http.StatusForbidden)
		case errors.Is(err, service.ErrAccountInactive):
			return nil, httpapi.NewError(httpapi.CodeAccountInactive, "account is not active", http.StatusForbidden)
		default:
			return nil, err
		}
	}
	return &loginResponse{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		User:         result.User,
	}, nil
}

// Logout terminates the caller's session. Idempotent: an absent, unknown, or
// already-terminated token still answers success, so the route does not
// require a valid session.
func (h *Handler) Logout(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	if err := h.svc.Logout(ctx, auth.Token); err != nil {
		return nil, err
	}
	return map[string]string{"status": "logged_out"}, nil
}

// Me returns the authenticated caller's profile, roles, and permissions.
func (h *Handler) Me(ctx context.Context, req *httpapi.Request, auth *httpapi.AuthContext) (any, error) {
	user, err := h.users.GetByID(ctx, auth.Identity.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Session outlived the user row; treat as an invalid session.
		return nil, httpapi.ErrSessionRequired()
	}
	return map[string]any{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"status":      user.Status,
		"roles":       auth.Identity.Roles,
		"permissions": auth.Identity.Permissions,
	}, nil
}
