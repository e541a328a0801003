package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vibedove/vibedove/internal/domain"
)

// SortOption represents a sort option with metadata
type SortOption struct {
	Key         string
	Label       string
	Field       domain.SortField
	Description string
}

var sortOptions = []SortOption{
	{Key: "b", Label: "Board", Field: domain.SortByBoard, Description: "insertion order"},
	{Key: "c", Label: "Created", Field: domain.SortByCreated, Description: "creation time"},
	{Key: "u", Label: "Updated", Field: domain.SortByUpdated, Description: "last change"},
	{Key: "t", Label: "Title", Field: domain.SortByTitle, Description: "alphabetical"},
}

// SortChangedMsg carries the sort after a change.
type SortChangedMsg struct {
	Sort domain.Sort
}

// SortMenu is a menu overlay for sorting configuration
type SortMenu struct {
	sort   *domain.Sort
	styles *Styles
}

// NewSortMenu creates a new sort menu for the given sort state
func NewSortMenu(sort *domain.Sort) *SortMenu {
	return &SortMenu{
		sort:   sort,
		styles: New(),
	}
}

// Init initializes the menu
func (m *SortMenu) Init() tea.Cmd {
	return nil
}

// Update handles messages. Pressing the active field's key flips the order.
func (m *SortMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc", "q", ",":
		return m, closeCmd
	}
	for _, opt := range sortOptions {
		if opt.Key == key.String() {
			m.sort.Toggle(opt.Field)
			changed := SortChangedMsg{Sort: *m.sort}
			return m, func() tea.Msg { return changed }
		}
	}
	return m, nil
}

// View renders the menu
func (m *SortMenu) View() string {
	var b strings.Builder

	for _, opt := range sortOptions {
		active := m.sort.Field == opt.Field
		keyStyle, labelStyle := m.styles.MenuItem, m.styles.MenuItem
		if active {
			keyStyle, labelStyle = m.styles.MenuKey, m.styles.MenuItemActive
		}

		b.WriteString(keyStyle.Render("[" + opt.Key + "]"))
		b.WriteString(" ")
		b.WriteString(labelStyle.Render(opt.Label))
		b.WriteString(" ")
		b.WriteString(m.styles.MenuItemDisabled.Render("(" + opt.Description + ")"))
		if active {
			arrow := "↑"
			if m.sort.Order == domain.SortDesc {
				arrow = "↓"
			}
			b.WriteString(" ")
			b.WriteString(m.styles.MenuItemActive.Render("● " + arrow))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Footer.Render("Press same key to toggle direction • Esc to close"))
	return b.String()
}

// Title returns the overlay title
func (m *SortMenu) Title() string {
	return "Sort"
}

// Size returns the overlay dimensions
func (m *SortMenu) Size() (width, height int) {
	return 56, len(sortOptions) + 4
}
