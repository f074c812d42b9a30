package httpapi

import "net/http"

// Error codes used in the response envelope.
const (
	CodeRouteNotFound          = "route_not_found"
	CodeMethodNotAllowed       = "method_not_allowed"
	CodeNotFound               = "not_found"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeAccountLocked          = "account_locked"
	CodeAccountInactive        = "account_inactive"
	CodeSessionInvalid         = "session_invalid"
	CodePermissionDenied       = "permission_denied"
	CodeValidationError        = "validation_error"
	CodePersistenceUnavailable = "persistence_unavailable"
	CodeInternalError          = "internal_error"
)

// Error is a domain error with an explicit HTTP status. Auth and routing
// failures are always recovered into one of these at the dispatch boundary,
// never propagated past it.
type Error struct {
	Code    string
	Message string
	Status  int
	Data    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// NewError returns an Error with the given code, message, and status.
func NewError(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// NewValidationError returns a 400 validation error with the given message.
func NewValidationError(message string) *Error {
	return NewError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrSessionRequired is returned when a protected route is hit without a
// usable session.
func ErrSessionRequired() *Error {
	return NewError(CodeSessionInvalid, "authentication required", http.StatusUnauthorized)
}

// ErrPermissionDenied is returned when the identity lacks the route's permission.
func ErrPermissionDenied() *Error {
	return NewError(CodePermissionDenied, "permission denied", http.StatusForbidden)
}
