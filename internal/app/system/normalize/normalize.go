// Package normalize standardizes user-supplied strings before they are
// validated, stored, or compared.
package normalize

import "strings"

// Email trims whitespace and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims whitespace from a raw query or form value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
