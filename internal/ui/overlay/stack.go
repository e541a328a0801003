package overlay

import tea "github.com/charmbracelet/bubbletea"

// Stack holds open overlays; only the top one receives input.
type Stack struct {
	overlays []Overlay
}

// NewStack creates a new empty overlay stack
func NewStack() *Stack {
	return &Stack{}
}

// Push adds an overlay to the top of the stack and returns its Init command.
func (s *Stack) Push(o Overlay) tea.Cmd {
	s.overlays = append(s.overlays, o)
	return o.Init()
}

// Pop removes and returns the top overlay, or nil if the stack is empty.
func (s *Stack) Pop() Overlay {
	top := s.Current()
	if top != nil {
		s.overlays = s.overlays[:len(s.overlays)-1]
	}
	return top
}

// Current returns the top overlay without removing it, or nil.
func (s *Stack) Current() Overlay {
	if len(s.overlays) == 0 {
		return nil
	}
	return s.overlays[len(s.overlays)-1]
}

// IsEmpty returns true if the stack has no overlays
func (s *Stack) IsEmpty() bool {
	return len(s.overlays) == 0
}

// Len returns the number of open overlays.
func (s *Stack) Len() int {
	return len(s.overlays)
}

// Clear removes all overlays from the stack
func (s *Stack) Clear() {
	s.overlays = nil
}

// Update forwards msg to the top overlay. CloseOverlayMsg pops it instead.
func (s *Stack) Update(msg tea.Msg) tea.Cmd {
	if s.IsEmpty() {
		return nil
	}
	if _, ok := msg.(CloseOverlayMsg); ok {
		s.Pop()
		return nil
	}

	model, cmd := s.Current().Update(msg)
	if o, ok := model.(Overlay); ok {
		s.overlays[len(s.overlays)-1] = o
	}
	return cmd
}
