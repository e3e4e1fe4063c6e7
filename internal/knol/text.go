// Package knol normalizes the free text a user types into a card.
package knol

import (
	"strings"
)

// Normalize trims surrounding whitespace. Everything inside the text,
// including case and line endings, is kept as typed.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// IsBlank reports whether text is empty once normalized.
func IsBlank(text string) bool {
	return Normalize(text) == ""
}

// Equal compares two texts after normalizing both.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Resolve returns the normalized replacement when one is supplied and the
// normalized current value otherwise.
func Resolve(current string, replacement *string) string {
	if replacement == nil {
		return Normalize(current)
	}
	return Normalize(*replacement)
}
