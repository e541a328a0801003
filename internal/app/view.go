package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vibedove/vibedove/internal/ui/board"
	"github.com/vibedove/vibedove/internal/ui/statusbar"
	"github.com/vibedove/vibedove/internal/ui/toast"
)

// View renders the current state as a string
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	bar := m.renderStatusBar()
	toasts := toast.New(m.styles).Render(m.toasts, m.width)

	boardHeight := m.height - lipgloss.Height(bar)
	if toasts != "" {
		boardHeight -= lipgloss.Height(toasts)
	}
	boardHeight = max(boardHeight, 3)

	var main string
	switch {
	case !m.loaded:
		main = lipgloss.Place(m.width, boardHeight, lipgloss.Center, lipgloss.Center, "Loading board...")
	case m.overlayStack.IsEmpty():
		main = m.renderBoard(boardHeight)
	default:
		main = m.renderOverlay(boardHeight)
	}

	parts := []string{main}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, bar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderBoard(height int) string {
	columns := m.buildColumns()
	return board.Render(columns, m.nav.Board(columns), m.styles, m.width, height)
}

// renderOverlay draws the top overlay. A zero-width overlay is a bar under
// the board; anything else is a centered modal in place of the board.
func (m Model) renderOverlay(height int) string {
	current := m.overlayStack.Current()
	view := current.View()
	width, _ := current.Size()

	if width == 0 {
		barHeight := lipgloss.Height(view)
		return lipgloss.JoinVertical(lipgloss.Left, m.renderBoard(max(height-barHeight, 3)), view)
	}

	if title := current.Title(); title != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, m.styles.OverlayTitle.Render(title), view)
	}
	view = m.styles.Overlay.Width(min(width, m.width-2)).Render(view)
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, view)
}

func (m Model) renderStatusBar() string {
	message := m.message
	if m.busy {
		message = m.spinner.View() + " working..."
	}
	return statusbar.New(m.mode, m.width, m.styles).
		WithMessage(message).
		WithInfo(m.info()).
		Render()
}

// info is the right side of the status bar: task count, active filters and
// the branch settings in use.
func (m Model) info() string {
	var parts []string
	shown := len(m.filter.Apply(m.board.Tasks))
	if m.filter.IsActive() {
		parts = append(parts, fmt.Sprintf("%d/%d tasks", shown, len(m.board.Tasks)))
	} else {
		parts = append(parts, fmt.Sprintf("%d tasks", len(m.board.Tasks)))
	}
	if summary := m.filter.Summary(); summary != "" {
		parts = append(parts, summary)
	}
	if q := m.filter.SearchQuery; q != "" {
		parts = append(parts, "/"+q)
	}
	cfg := m.engine.Config()
	parts = append(parts, "base: "+cfg.BaseBranchLabel(), "prefix: "+cfg.BranchPrefix)
	return strings.Join(parts, " · ")
}
