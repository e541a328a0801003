// Package toast renders transient notifications below the board.
package toast

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vibedove/vibedove/internal/types"
	"github.com/vibedove/vibedove/internal/ui/styles"
)

// MaxVisible is the number of most recent toasts shown at once.
const MaxVisible = 3

// ToastRenderer handles rendering of toast notifications
type ToastRenderer struct {
	styles *styles.Styles
}

// New creates a new ToastRenderer with the given styles
func New(styles *styles.Styles) *ToastRenderer {
	return &ToastRenderer{
		styles: styles,
	}
}

// Render renders the most recent toasts right-aligned within width.
// Returns empty string if no toasts to display
func (r *ToastRenderer) Render(toasts []types.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	if len(toasts) > MaxVisible {
		toasts = toasts[len(toasts)-MaxVisible:]
	}

	toastWidth := min(max(width/2, 20), 60)

	var rendered []string
	for _, t := range toasts {
		style := r.styleForLevel(t.Level)
		rendered = append(rendered, style.Width(toastWidth).Render(t.Message))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}

// Prune drops toasts that have expired at now.
func Prune(toasts []types.Toast, now time.Time) []types.Toast {
	kept := toasts[:0:0]
	for _, t := range toasts {
		if !t.Expired(now) {
			kept = append(kept, t)
		}
	}
	return kept
}

// styleForLevel returns the appropriate style for a toast level
func (r *ToastRenderer) styleForLevel(level types.ToastLevel) lipgloss.Style {
	switch level {
	case types.ToastSuccess:
		return r.styles.ToastSuccess
	case types.ToastWarning:
		return r.styles.ToastWarning
	case types.ToastError:
		return r.styles.ToastError
	default:
		return r.styles.ToastInfo
	}
}
