package httpapi

import "strconv"

// Params holds coerced request parameters keyed by name. Values are kept as
// canonical strings after coercion; typed getters parse on access.
type Params map[string]string

// Get returns the raw string value for name, or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// Int returns the integer value for name. Coercion has already validated and
// clamped integer-kind parameters, so a missing or malformed value yields 0.
func (p Params) Int(name string) int {
	n, _ := strconv.Atoi(p[name])
	return n
}
