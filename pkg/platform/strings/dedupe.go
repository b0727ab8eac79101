// Package strings has small helpers for normalizing external string input.
package strings

import "strings"

// DedupeAndTrim trims each element and drops empties and duplicates,
// preserving first-seen order.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is DedupeAndTrim with case folding, for inputs that
// feed case-insensitive enums.
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}
