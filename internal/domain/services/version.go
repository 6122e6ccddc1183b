package services

import (
	"fmt"
	"strings"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

// ParseVersionOutput extracts MAJOR.MINOR.PATCH from "<tool> version" output.
//
// Two shapes are accepted and told apart by token count, never by version:
//
//	0.1.15                 bare dotted version
//	hc-releases v0.1.0 ()  legacy "<tool> v<version> (<details>)"
func ParseVersionOutput(output string) (string, error) {
	trimmed := strings.TrimSpace(output)
	tokens := strings.Fields(trimmed)

	var candidate string
	switch len(tokens) {
	case 1:
		candidate = tokens[0]
	case 3:
		if !strings.HasPrefix(tokens[1], "v") {
			return "", fmt.Errorf("%w: %q", entities.ErrUnexpectedVersionOutput, trimmed)
		}
		candidate = strings.TrimPrefix(tokens[1], "v")
	default:
		return "", fmt.Errorf("%w: %q", entities.ErrUnexpectedVersionOutput, trimmed)
	}

	if !isDottedTriple(candidate) {
		return "", fmt.Errorf("%w: %q", entities.ErrUnexpectedVersionOutput, trimmed)
	}

	return candidate, nil
}

// isDottedTriple reports whether v has three dot-separated components,
// each starting with a digit
func isDottedTriple(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" || p[0] < '0' || p[0] > '9' {
			return false
		}
	}
	return true
}
