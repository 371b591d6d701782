package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// TrimInputString keeps the caller's casing. Skill names and day titles are
// display text, not lookup keys.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
