// Package validate rejects bad search queries before they can reach the
// cache, the quota ledger, or the paid provider API.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Query length bounds.
const (
	MinQueryLength = 2
	MaxQueryLength = 200
)

// Result holds the outcome of query validation.
type Result struct {
	// Valid is true when the query passed all checks.
	Valid bool

	// Reasons lists human-readable failure messages, empty when Valid.
	Reasons []string

	// Query is the trimmed (but not slug-normalized) query.
	Query string
}

// Query validates a raw search query.
// Rules are applied in order: required, minimum length, maximum length.
func Query(raw string) Result {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return Result{
			Valid:   false,
			Reasons: []string{"search query is required"},
		}
	}

	// Bounds count characters, not bytes, so multibyte queries are measured
	// the same way the user typed them.
	var reasons []string
	length := utf8.RuneCountInString(trimmed)
	if length < MinQueryLength {
		reasons = append(reasons, fmt.Sprintf("search query must be at least %d characters", MinQueryLength))
	}
	if length > MaxQueryLength {
		reasons = append(reasons, fmt.Sprintf("search query must be less than %d characters", MaxQueryLength))
	}

	return Result{
		Valid:   len(reasons) == 0,
		Reasons: reasons,
		Query:   trimmed,
	}
}
