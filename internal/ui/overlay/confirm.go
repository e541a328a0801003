package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmDialog is a confirmation dialog overlay with Yes/No options
type ConfirmDialog struct {
	title    string
	message  string
	payload  any
	styles   *Styles
	selected bool // true = Yes, false = No
}

// ConfirmResult is the Value of the SelectionMsg a ConfirmDialog emits.
// Payload is handed back untouched so the caller knows what was confirmed.
type ConfirmResult struct {
	Confirmed bool
	Payload   any
}

// NewConfirmDialog creates a dialog that defaults to No.
func NewConfirmDialog(title, message string, payload any) *ConfirmDialog {
	return &ConfirmDialog{
		title:   title,
		message: message,
		payload: payload,
		styles:  New(),
	}
}

// Init initializes the dialog
func (c *ConfirmDialog) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (c *ConfirmDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch key.String() {
	case "y", "Y":
		return c, c.answer(true)
	case "n", "N", "esc", "q":
		return c, c.answer(false)
	case "enter":
		return c, c.answer(c.selected)
	case "left", "h":
		c.selected = false
	case "right", "l", "tab":
		c.selected = true
	}
	return c, nil
}

func (c *ConfirmDialog) answer(yes bool) tea.Cmd {
	key := "no"
	if yes {
		key = "yes"
	}
	result := ConfirmResult{Confirmed: yes, Payload: c.payload}
	return func() tea.Msg {
		return SelectionMsg{Key: key, Value: result}
	}
}

// View renders the dialog
func (c *ConfirmDialog) View() string {
	var b strings.Builder
	b.WriteString(c.styles.MenuItem.Render(c.message))
	b.WriteString("\n\n")

	no, yes := c.styles.MenuItem, c.styles.MenuItem
	if c.selected {
		yes = c.styles.MenuItemActive
	} else {
		no = c.styles.MenuItemActive
	}
	b.WriteString(c.styles.MenuKey.Render("[n]") + " " + no.Render("No"))
	b.WriteString("   ")
	b.WriteString(c.styles.MenuKey.Render("[y]") + " " + yes.Render("Yes"))
	b.WriteString("\n")
	b.WriteString(c.styles.Footer.Render("h/l: choose • enter: confirm • esc: cancel"))
	return b.String()
}

// Title returns the dialog title
func (c *ConfirmDialog) Title() string {
	return c.title
}

// Size returns the dialog dimensions
func (c *ConfirmDialog) Size() (width, height int) {
	return 50, 6
}
