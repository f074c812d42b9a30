// Package httpapi defines the request/response envelope and error taxonomy
// shared by the router, the dispatcher, and the HTTP handlers.
package httpapi

import (
	"context"
	"encoding/json"
	"net/url"

	authzdomain "finboard/internal/authz/domain"
)

// Request is the normalized view of one HTTP request handed to a handler.
// Params holds coerced path and query parameters per the route's schema.
type Request struct {
	Method    string
	Path      string
	Params    Params
	Query     url.Values
	Body      []byte
	IPAddress string
	UserAgent string
}

// DecodeBody unmarshals the JSON body into v. Returns a ValidationError for
// malformed JSON so handlers can return it directly.
func (r *Request) DecodeBody(v any) error {
	if len(r.Body) == 0 {
		return NewValidationError("request body is required")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return NewValidationError("request body is not valid JSON")
	}
	return nil
}

// AuthContext carries the requester's identity for the duration of one
// request. Identity is nil for unauthenticated requests; Token is the raw
// bearer credential when one was presented, whether or not it resolved.
// Never shared across requests and never mutated after creation.
type AuthContext struct {
	Identity *authzdomain.Identity
	Token    string
}

// Authenticated reports whether a valid session backed this request.
func (a *AuthContext) Authenticated() bool {
	return a != nil && a.Identity != nil
}

// HandlerFunc is the typed handler contract bound at route registration.
// Handlers return a payload (serialized into the success envelope), a *Error
// (serialized with its status), or any other error (converted to a 500
// without leaking detail).
type HandlerFunc func(ctx context.Context, req *Request, auth *AuthContext) (any, error)

// Result wraps a payload with a non-200 success status (e.g. 201 on create).
type Result struct {
	Status int
	Data   any
}

// Envelope is the uniform JSON response shape for success and failure alike.
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
