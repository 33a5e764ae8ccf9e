// Package terms splits and rebuilds comma separated tag lists.
//
// A field value such as "go, postgres,pyth" is a sequence of terms separated
// by a comma and optional whitespace. The last term is the fragment the user
// is still typing; it is empty when the value ends with a separator.
package terms

import (
	"regexp"
	"strings"
)

// Separator is written between terms when a sequence is joined.
const Separator = ", "

var separatorRe = regexp.MustCompile(`,\s*`)

// Split returns the terms of value in order. It never returns an empty slice:
// Split("") is [""].
func Split(value string) []string {
	return separatorRe.Split(value, -1)
}

// ExtractLast returns the fragment being completed, the last element of Split.
func ExtractLast(value string) string {
	parts := Split(value)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// Join rebuilds a field value, normalizing every separator to ", ".
func Join(parts []string) string {
	return strings.Join(parts, Separator)
}

// Merge replaces the fragment of value with accepted and appends an empty
// placeholder term so the result ends with a separator.
//
//	Merge("foo, ba", "bar") == "foo, bar, "
func Merge(value, accepted string) string {
	parts := Split(value)
	parts = parts[:len(parts)-1]
	parts = append(parts, accepted, "")
	return Join(parts)
}

// Complete returns the non-empty terms of value. Used when a submitted field
// is turned into a tag list.
func Complete(value string) []string {
	parts := Split(value)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
