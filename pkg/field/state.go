// Package field drives a comma separated tag field: it decides which keys the
// field swallows, when suggestions are queried, and how an accepted
// suggestion is merged back into the value.
package field

// State is the phase of the completion cycle.
type State int

const (
	Idle State = iota
	Querying
	Suggesting
	Committing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Querying:
		return "querying"
	case Suggesting:
		return "suggesting"
	case Committing:
		return "committing"
	default:
		return "unknown"
	}
}

// Key is a key press the controller cares about. Everything else, including
// printable characters, is KeyOther.
type Key int

const (
	KeyOther Key = iota
	KeyTab
	KeyEnter
	KeyEscape
	KeyUp
	KeyDown
)

// Input is the host text field.
type Input interface {
	Value() string
	SetValue(string)
	// CursorEnd places the caret after the last character.
	CursorEnd()
}

// Guard decides whether a key's default effect is suppressed.
type Guard struct{}

// Suppress reports whether key must not perform its default action. Tab and
// Enter are taken over only while the list has a highlighted item; with no
// list, Tab moves focus and Enter submits as usual.
func (Guard) Suppress(key Key, listActive bool) bool {
	switch key {
	case KeyTab, KeyEnter:
		return listActive
	default:
		return false
	}
}
