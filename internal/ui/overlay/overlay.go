// Package overlay contains the modal components drawn over the board:
// forms, confirmation, task details, the action menu, help and search.
package overlay

import tea "github.com/charmbracelet/bubbletea"

// Overlay represents a modal overlay component
type Overlay interface {
	tea.Model
	Title() string
	// Size returns the content size; a zero width means a full-width bar.
	Size() (width, height int)
}

// CloseOverlayMsg signals that the overlay should be closed
type CloseOverlayMsg struct{}

// SelectionMsg is sent when an action is selected
type SelectionMsg struct {
	Key   string
	Value any
}

func closeCmd() tea.Msg { return CloseOverlayMsg{} }
