package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vibedove/vibedove/internal/ui/styles"
)

// cardHeight is the rendered height of one card including its margin.
const cardHeight = 5

// renderColumn renders a kanban column with header and task cards. Cards
// that do not fit are summarized in a "+N more" line, keeping the cursor
// card visible.
func renderColumn(
	col Column,
	cursorTask int,
	isActive bool,
	width int,
	height int,
	s *styles.Styles,
) string {
	headerStyle := s.ColumnHeaderFor(col.Status, isActive)

	// "─ In Progress (2) ─────"
	label := fmt.Sprintf("─ %s ", col.Title)
	count := fmt.Sprintf("(%d) ", len(col.Tasks))
	remaining := width - lipgloss.Width(label) - lipgloss.Width(count) - 2
	fill := ""
	if remaining > 0 {
		fill = strings.Repeat("─", remaining)
	}
	header := headerStyle.Render(label) + s.ColumnCount.Render(count) + headerStyle.Render(fill)

	visible := max(1, (height-2)/cardHeight)
	start := 0
	if cursorTask >= visible {
		start = cursorTask - visible + 1
	}
	end := min(len(col.Tasks), start+visible)

	var cardStrings []string
	cardWidth := width - 4
	for i := start; i < end; i++ {
		cardStrings = append(cardStrings, renderCard(col.Tasks[i], i == cursorTask, cardWidth, s))
	}
	if hidden := len(col.Tasks) - (end - start); hidden > 0 {
		cardStrings = append(cardStrings, s.StatusHint.Render(fmt.Sprintf("  +%d more", hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(cardStrings, "\n"))
}
