package board

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/ui/styles"
)

// renderCard renders a task card: cursor marker and title, then the ID
// with branch and worktree indicators.
func renderCard(task domain.Task, isCursor bool, width int, s *styles.Styles) string {
	cardStyle := s.Card
	if isCursor {
		cardStyle = s.CardActive.BorderForeground(styles.StatusColor(task.Status))
	}
	cardStyle = cardStyle.Width(width)

	cursor := ""
	if isCursor {
		cursor = "▶ "
	}
	// padding (2) and border (2)
	title := ansi.Truncate(cursor+task.Title, max(1, width-4), "…")

	meta := s.TaskID.Render(task.ID)
	if task.HasBranch() {
		meta += " " + s.BranchBadge.Render("⎇")
	}
	if task.HasWorktree() {
		meta += " " + s.WorktreeBadge.Render("◆")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, s.TaskTitle.Render(title), meta)
	return cardStyle.Render(content)
}

// RenderCard is the exported version for testing
func RenderCard(task domain.Task, isCursor bool, width int, s *styles.Styles) string {
	return renderCard(task, isCursor, width, s)
}
