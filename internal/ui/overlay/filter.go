package overlay

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vibedove/vibedove/internal/domain"
)

// FilterChangedMsg is emitted whenever the filter menu edits the filter.
type FilterChangedMsg struct{}

// FilterMenu is a menu overlay for task filtering. It edits the filter it
// was given in place.
type FilterMenu struct {
	filter *domain.Filter
	styles *Styles
}

// NewFilterMenu creates a new filter menu for the given filter
func NewFilterMenu(filter *domain.Filter) *FilterMenu {
	if filter.Status == nil {
		filter.Status = make(map[domain.Status]bool)
	}
	return &FilterMenu{
		filter: filter,
		styles: New(),
	}
}

// Init initializes the menu
func (m *FilterMenu) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *FilterMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k := key.String(); k {
	case "esc", "q", "f":
		return m, closeCmd
	case "1", "2", "3", "4", "5":
		m.filter.ToggleStatus(domain.Statuses[k[0]-'1'])
	case "w":
		m.filter.HasWorktree = !m.filter.HasWorktree
	case "a":
		m.filter.CycleAge()
	case "c":
		m.filter.ClearFacets()
	default:
		return m, nil
	}
	return m, func() tea.Msg { return FilterChangedMsg{} }
}

func (m *FilterMenu) check(on bool) string {
	if on {
		return m.styles.MenuItemActive.Render("[x]")
	}
	return m.styles.MenuItemDisabled.Render("[ ]")
}

// View renders the menu
func (m *FilterMenu) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("Status"))
	b.WriteString("\n")
	for i, s := range domain.Statuses {
		fmt.Fprintf(&b, "%s %s %s\n",
			m.styles.MenuKey.Render(fmt.Sprintf("[%d]", i+1)),
			m.check(m.filter.Status[s]),
			m.styles.MenuItem.Render(s.String()))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s %s\n",
		m.styles.MenuKey.Render("[w]"),
		m.check(m.filter.HasWorktree),
		m.styles.MenuItem.Render("Has worktree"))

	age := "any"
	if m.filter.AgeMaxDays != nil {
		age = fmt.Sprintf("≤ %dd", *m.filter.AgeMaxDays)
	}
	fmt.Fprintf(&b, "%s     %s\n",
		m.styles.MenuKey.Render("[a]"),
		m.styles.MenuItem.Render("Updated: "+age))

	b.WriteString(m.styles.Footer.Render("c: clear • esc: close"))
	return b.String()
}

// Title returns the overlay title
func (m *FilterMenu) Title() string {
	return "Filter"
}

// Size returns the overlay dimensions
func (m *FilterMenu) Size() (width, height int) {
	return 40, len(domain.Statuses) + 8
}
