// Package dispatch is the single HTTP entry point: it matches requests
// against the route table, resolves the caller's session into an identity,
// enforces per-route auth requirements, and normalizes every outcome into
// the JSON response envelope.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	authzdomain "finboard/internal/authz/domain"
	"finboard/internal/httpapi"
	"finboard/internal/httpapi/router"
)

// maxBodyBytes bounds handler request bodies.
const maxBodyBytes = 1 << 20

// SessionValidator resolves a bearer token into an identity. A nil identity
// with a nil error means the token is absent, unknown, or no longer usable;
// an error means the lookup itself failed.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*authzdomain.Identity, error)
}

// Dispatcher implements http.Handler over a frozen route table.
type Dispatcher struct {
	routes   *router.Router
	sessions SessionValidator
	timeout  time.Duration
}

// New returns a Dispatcher. timeout bounds each handler invocation; zero
// disables the per-request deadline.
func New(routes *router.Router, sessions SessionValidator, timeout time.Duration) *Dispatcher {
	return &Dispatcher{routes: routes, sessions: sessions, timeout: timeout}
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	m, err := d.routes.Match(r.Method, r.URL.Path)
	if err != nil {
		switch {
		case errors.Is(err, router.ErrMethodNotAllowed):
			writeError(w, httpapi.NewError(httpapi.CodeMethodNotAllowed, "method not allowed", http.StatusMethodNotAllowed))
		default:
			writeError(w, httpapi.NewError(httpapi.CodeRouteNotFound, "route not found", http.StatusNotFound))
		}
		return
	}

	// Session resolution happens at most once per request; handlers receive
	// the result and never re-validate.
	auth := &httpapi.AuthContext{}
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		auth.Token = token
		identity, err := d.sessions.ValidateSession(r.Context(), token)
		if err != nil {
			log.Printf("dispatch: session validation failed: %v", err)
			writeError(w, httpapi.NewError(httpapi.CodePersistenceUnavailable, "service temporarily unavailable", http.StatusInternalServerError))
			return
		}
		auth.Identity = identity
	}
	if m.Route.RequireAuth && !auth.Authenticated() {
		writeError(w, httpapi.ErrSessionRequired())
		return
	}
	if m.Route.Permission != "" && !auth.Identity.Can(m.Route.Permission) {
		writeError(w, httpapi.ErrPermissionDenied())
		return
	}

	params, err := m.CoerceParams(r.URL.Query())
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, httpapi.NewValidationError("unable to read request body"))
		return
	}

	req := &httpapi.Request{
		Method:    r.Method,
		Path:      r.URL.Path,
		Params:    params,
		Query:     r.URL.Query(),
		Body:      body,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}

	ctx := r.Context()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	payload, err := d.invoke(ctx, m.Route.Handler, req, auth)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	status := http.StatusOK
	if res, ok := payload.(*httpapi.Result); ok {
		status = res.Status
		payload = res.Data
	}
	writeJSON(w, status, httpapi.Envelope{Success: true, Data: payload})
}

// invoke runs the handler with panic recovery. A panic is logged with its
// stack and surfaced as a bare internal error; the response never carries
// panic detail.
func (d *Dispatcher) invoke(ctx context.Context, h httpapi.HandlerFunc, req *httpapi.Request, auth *httpapi.AuthContext) (payload any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("dispatch: panic in %s %s: %v\n%s", req.Method, req.Path, rec, debug.Stack())
			payload = nil
			err = httpapi.NewError(httpapi.CodeInternalError, "internal server error", http.StatusInternalServerError)
		}
	}()
	return h(ctx, req, auth)
}

// bearerToken extracts the token from an Authorization header. The scheme
// comparison is case-insensitive; anything other than a two-part bearer
// credential yields "". An absent header is not an error, the request simply
// proceeds unauthenticated.
func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// clientIP prefers proxy-set headers over the socket peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// writeDispatchError maps handler and middleware errors onto the envelope.
// Only *httpapi.Error carries caller-visible detail; everything else is
// reported as a bare internal error and logged server-side.
func writeDispatchError(w http.ResponseWriter, err error) {
	var apiErr *httpapi.Error
	switch {
	case errors.As(err, &apiErr):
		writeError(w, apiErr)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, httpapi.NewError(httpapi.CodeInternalError, "request timed out", http.StatusGatewayTimeout))
	default:
		log.Printf("dispatch: unhandled error: %v", err)
		writeError(w, httpapi.NewError(httpapi.CodeInternalError, "internal server error", http.StatusInternalServerError))
	}
}

func writeError(w http.ResponseWriter, apiErr *httpapi.Error) {
	writeJSON(w, apiErr.Status, httpapi.Envelope{
		Success: false,
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Data:    apiErr.Data,
	})
}

func writeJSON(w http.ResponseWriter, status int, env httpapi.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("dispatch: write response: %v", err)
	}
}
