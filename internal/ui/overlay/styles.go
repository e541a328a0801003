package overlay

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vibedove/vibedove/internal/ui/styles"
)

// Styles holds all overlay-specific styles
type Styles struct {
	MenuItem         lipgloss.Style
	MenuItemActive   lipgloss.Style
	MenuItemDisabled lipgloss.Style
	MenuKey          lipgloss.Style
	MenuKeyDisabled  lipgloss.Style
	Separator        lipgloss.Style
	Footer           lipgloss.Style
	// Header is a section heading inside an overlay
	Header lipgloss.Style
	// Label is a right-aligned field label
	Label lipgloss.Style
	// LabelFocused marks the field holding focus
	LabelFocused lipgloss.Style
	// Error is inline validation text
	Error lipgloss.Style
}

// New creates a new Styles instance using the Catppuccin Macchiato theme
func New() *Styles {
	return &Styles{
		MenuItem: lipgloss.NewStyle().
			Foreground(styles.Text),

		MenuItemActive: lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true),

		MenuItemDisabled: lipgloss.NewStyle().
			Foreground(styles.Overlay0),

		MenuKey: lipgloss.NewStyle().
			Foreground(styles.Yellow).
			Bold(true),

		MenuKeyDisabled: lipgloss.NewStyle().
			Foreground(styles.Surface2).
			Bold(true),

		Separator: lipgloss.NewStyle().
			Foreground(styles.Surface1),

		Footer: lipgloss.NewStyle().
			Foreground(styles.Subtext0).
			MarginTop(1),

		Header: lipgloss.NewStyle().
			Foreground(styles.Sapphire).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(styles.Teal).
			Width(13).
			Align(lipgloss.Right),

		LabelFocused: lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true).
			Width(13).
			Align(lipgloss.Right),

		Error: lipgloss.NewStyle().
			Foreground(styles.Red),
	}
}
