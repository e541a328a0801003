// Package types contains shared types used across the application.
package types

// Mode represents the current input mode of the board
type Mode int

const (
	ModeNormal Mode = iota
	ModeGoto
	ModeSearch
	// ModeBusy is active while a transition runs; transition keys are ignored.
	ModeBusy
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeGoto:
		return "GOTO"
	case ModeSearch:
		return "SEARCH"
	case ModeBusy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}
