package utils

import (
	"strings"
)

// SeenSet remembers names case-insensitively.
type SeenSet struct {
	seen map[string]struct{}
}

// NewSeenSet creates a set that already contains exclude, when not empty.
func NewSeenSet(exclude ...string) *SeenSet {
	s := &SeenSet{seen: make(map[string]struct{}, len(exclude))}
	for _, e := range exclude {
		if e != "" {
			s.seen[strings.ToLower(e)] = struct{}{}
		}
	}
	return s
}

// First reports whether name is seen for the first time, and records it.
func (s *SeenSet) First(name string) bool {
	key := strings.ToLower(name)
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Unique returns names without case-insensitive repeats, keeping the first
// spelling and the original order.
func Unique(names []string) []string {
	s := NewSeenSet()
	out := make([]string, 0, len(names))
	for _, n := range names {
		if s.First(n) {
			out = append(out, n)
		}
	}
	return out
}
