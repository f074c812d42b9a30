// Package router implements the ordered regex route table. Patterns are
// full-string matches with named capture groups for path parameters; the
// first registered route whose pattern matches wins.
package router

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"finboard/internal/httpapi"
)

var (
	// ErrDuplicateRoute is returned when an identical pattern+method pair is
	// registered twice. The source framework silently kept the first route;
	// failing at registration surfaces dead handlers at startup instead.
	ErrDuplicateRoute = errors.New("duplicate route registration")
	// ErrNoRouteMatched means no pattern matched the path (404).
	ErrNoRouteMatched = errors.New("no route matched")
	// ErrMethodNotAllowed means a pattern matched but not the method (405).
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// ParamKind selects the coercion applied to a parameter value.
type ParamKind int

const (
	KindString ParamKind = iota
	// KindInt coerces to a non-negative integer, clamped to [Min, Max].
	KindInt
)

// ParamRule is the per-parameter coercion/validation rule. Rules apply to
// path captures and query parameters alike; Default is injected when the
// parameter is absent from both.
type ParamRule struct {
	Kind    ParamKind
	Default string
	Min     int
	Max     int // 0 means unbounded
}

// ParamSchema maps parameter names to their rules.
type ParamSchema map[string]ParamRule

// Route binds a path pattern and method set to a handler. Immutable once
// registered.
type Route struct {
	Pattern string
	Methods []string
	Handler httpapi.HandlerFunc
	Schema  ParamSchema
	// RequireAuth rejects requests without a valid session (401).
	RequireAuth bool
	// Permission, when set, is checked against the identity (403). Implies RequireAuth.
	Permission string

	re *regexp.Regexp
}

// Match is a successful route lookup: the route plus raw path captures.
type Match struct {
	Route      *Route
	PathParams map[string]string
}

// Router holds the ordered route table. The table is built once at startup
// and is read-only afterwards, so concurrent Match calls need no locking.
type Router struct {
	routes []*Route
	frozen bool
}

// New returns an empty Router.
func New() *Router {
	return &Router{}
}

// Register compiles and appends a route. The pattern is implicitly anchored
// (full-string match). Returns ErrDuplicateRoute when the same pattern is
// already registered for any of the route's methods, or an error for an
// invalid pattern or empty method set.
func (r *Router) Register(route Route) error {
	if r.frozen {
		return errors.New("route table is frozen; registration must finish before dispatch starts")
	}
	if len(route.Methods) == 0 {
		return fmt.Errorf("route %q: at least one method is required", route.Pattern)
	}
	if route.Handler == nil {
		return fmt.Errorf("route %q: handler is required", route.Pattern)
	}
	for _, existing := range r.routes {
		if existing.Pattern != route.Pattern {
			continue
		}
		for _, m := range route.Methods {
			if methodIn(existing.Methods, m) {
				return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, m, route.Pattern)
			}
		}
	}
	re, err := regexp.Compile("^(?:" + route.Pattern + ")$")
	if err != nil {
		return fmt.Errorf("route %q: %w", route.Pattern, err)
	}
	if route.Permission != "" {
		route.RequireAuth = true
	}
	route.re = re
	r.routes = append(r.routes, &route)
	return nil
}

// Freeze closes the table for registration. Called once after startup wiring;
// Match never mutates the table, so reads after Freeze are safe without locks.
func (r *Router) Freeze() {
	r.frozen = true
}

// Match returns the first registered route whose pattern fully matches path.
// First match wins, not best match. Returns ErrNoRouteMatched when no pattern
// matches and ErrMethodNotAllowed when a pattern matches but excludes method —
// distinct kinds so the dispatcher can answer 404 vs 405.
func (r *Router) Match(method, path string) (*Match, error) {
	patternMatched := false
	for _, route := range r.routes {
		m := route.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		patternMatched = true
		if !methodIn(route.Methods, method) {
			continue
		}
		params := make(map[string]string)
		for i, name := range route.re.SubexpNames() {
			if i > 0 && name != "" {
				params[name] = m[i]
			}
		}
		return &Match{Route: route, PathParams: params}, nil
	}
	if patternMatched {
		return nil, ErrMethodNotAllowed
	}
	return nil, ErrNoRouteMatched
}

// CoerceParams applies the route's schema over raw path captures and query
// parameters (path wins on collision) and returns the canonical parameter
// map. Parameters without a rule pass through as strings; integer rules
// reject non-numeric input and clamp to the rule's bounds.
func (m *Match) CoerceParams(query url.Values) (httpapi.Params, error) {
	out := make(httpapi.Params, len(m.PathParams))
	for name, v := range m.PathParams {
		out[name] = v
	}
	for name, rule := range m.Route.Schema {
		raw, ok := out[name]
		if !ok {
			if qv := query.Get(name); qv != "" {
				raw, ok = qv, true
			}
		}
		if !ok || raw == "" {
			if rule.Default == "" {
				continue
			}
			raw = rule.Default
		}
		switch rule.Kind {
		case KindInt:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, httpapi.NewValidationError(fmt.Sprintf("parameter %q must be an integer", name))
			}
			if n < 0 {
				n = 0
			}
			if n < rule.Min {
				n = rule.Min
			}
			if rule.Max > 0 && n > rule.Max {
				n = rule.Max
			}
			out[name] = strconv.Itoa(n)
		default:
			out[name] = raw
		}
	}
	return out, nil
}

func methodIn(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
