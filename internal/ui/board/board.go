package board

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vibedove/vibedove/internal/ui/styles"
)

// Render renders the kanban board, one column per status
func Render(
	columns []Column,
	cursor Cursor,
	s *styles.Styles,
	width int,
	height int,
) string {
	if len(columns) == 0 {
		return ""
	}

	// Evenly distributed; the last column takes the remainder
	columnWidth := width / len(columns)

	var columnStrings []string
	for i, col := range columns {
		isActive := i == cursor.Column
		cursorTask := -1
		if isActive {
			cursorTask = cursor.Task
		}

		w := columnWidth
		if i == len(columns)-1 {
			w = width - columnWidth*(len(columns)-1)
		}

		columnStr := renderColumn(col, cursorTask, isActive, w, height, s)
		sized := lipgloss.NewStyle().Width(w).MaxHeight(height).Render(columnStr)
		columnStrings = append(columnStrings, sized)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnStrings...)
}
