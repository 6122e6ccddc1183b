package services

import "strings"

// Resolve returns the first value that is not blank, or "" if none is.
// Values are given in precedence order, e.g. override, computed, fallback.
func Resolve(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
