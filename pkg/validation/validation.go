// Package validation collects per-field input problems so they can be
// reported together in one 400 response.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Result holds all validation errors, keyed by field name
type Result struct {
	Fields map[string][]string
}

// Add records a problem with field.
func (r *Result) Add(field, message string) {
	if r.Fields == nil {
		r.Fields = map[string][]string{}
	}
	r.Fields[field] = append(r.Fields[field], message)
}

func (r *Result) IsValid() bool {
	return len(r.Fields) == 0
}

// Err returns nil when valid, otherwise an *Error carrying the fields.
func (r *Result) Err() error {
	if r.IsValid() {
		return nil
	}
	return &Error{Fields: r.Fields}
}

// Error is returned when a request fails validation
type Error struct {
	Fields map[string][]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], "; ")))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// Field returns an *Error for a single field.
func Field(field, message string) error {
	var r Result
	r.Add(field, message)
	return r.Err()
}
