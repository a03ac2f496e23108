package utils

import "strings"

// ContainsString reports whether val is present in slice.
func ContainsString(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}

// UpperAll returns an upper-cased, de-duplicated copy of the input, preserving order.
func UpperAll(input []string) []string {
	seen := make(map[string]bool, len(input))
	out := make([]string, 0, len(input))
	for _, val := range input {
		u := strings.ToUpper(strings.TrimSpace(val))
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
