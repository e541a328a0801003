// Package statusbar renders the bottom line of the board: mode, key hints,
// the last status message and repository info.
package statusbar

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vibedove/vibedove/internal/types"
	"github.com/vibedove/vibedove/internal/ui/styles"
)

// StatusBar represents the status bar at the bottom of the TUI
type StatusBar struct {
	mode    types.Mode
	width   int
	styles  *styles.Styles
	message string
	info    string
}

// New creates a new StatusBar with the given mode, width, and styles
func New(mode types.Mode, width int, styles *styles.Styles) StatusBar {
	return StatusBar{
		mode:   mode,
		width:  width,
		styles: styles,
	}
}

// WithMessage sets the status message shown after the hints.
func (sb StatusBar) WithMessage(msg string) StatusBar {
	sb.message = msg
	return sb
}

// WithInfo sets the right-aligned info text (branch prefix, base branch).
func (sb StatusBar) WithInfo(info string) StatusBar {
	sb.info = info
	return sb
}

// Render renders the status bar as a string
func (sb StatusBar) Render() string {
	modeStyle := sb.styles.StatusMode
	if sb.mode == types.ModeBusy {
		modeStyle = modeStyle.Background(styles.Yellow)
	}
	modeBadge := modeStyle.Render(sb.mode.String())

	parts := []string{modeBadge}
	separator := sb.styles.StatusHint.Render(" │ ")

	// the message replaces the hints when present
	if sb.message != "" {
		parts = append(parts, separator, sb.styles.StatusInfo.Render(sb.message))
	} else if hints := GetHints(sb.mode); hints != "" {
		parts = append(parts, separator, sb.styles.StatusHint.Render(hints))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Left, parts...)

	// padding (2)
	inner := sb.width - 2
	if sb.info != "" {
		info := sb.styles.StatusInfo.Render(sb.info)
		gap := inner - lipgloss.Width(left) - lipgloss.Width(info)
		if gap >= 1 {
			left = left + lipgloss.NewStyle().Width(gap).Render("") + info
		}
	}
	if inner > 0 && lipgloss.Width(left) > inner {
		left = ansi.Truncate(left, inner, "…")
	}

	return sb.styles.StatusBar.Width(sb.width).Render(left)
}
