// Package slug provides deterministic, URL-safe cache keys for food names.
// The same slug is used for cache writes and reads, so the transform must be
// stable across releases: changing it invalidates every stored entry.
package slug

import (
	"regexp"
	"strings"
)

var (
	apostrophes = regexp.MustCompile(`'+`)
	underscores = regexp.MustCompile(`_+`)
	specials    = regexp.MustCompile(`[^\w\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
	hyphenRuns  = regexp.MustCompile(`-+`)
)

// Make converts a display string to a URL-safe slug.
//
// The transform is pure and idempotent: Make(Make(x)) == Make(x).
// Distinct display names may collapse to the same slug ("Chicken Breast"
// and "chicken  breast" both map to "chicken-breast"); callers treat that
// as a legitimate cache hit.
//
// Example:
//
//	Make("Chicken Breast") // "chicken-breast"
//	Make("Trader Joe's")   // "trader-joes"
//	Make("  Oatmeal  ")    // "oatmeal"
func Make(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = apostrophes.ReplaceAllString(s, "")
	s = underscores.ReplaceAllString(s, "-")
	s = specials.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return s
}
