package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/engine"
)

// Action represents a menu action
type Action struct {
	Key     string
	Label   string
	Kind    engine.Kind
	Enabled bool
}

// ActionSelectedMsg is emitted when an enabled action is chosen. The
// receiver closes the menu.
type ActionSelectedMsg struct {
	TaskID string
	Kind   engine.Kind
}

var lifecycleActions = []Action{
	{Key: "s", Label: "Start (branch + worktree)", Kind: engine.KindStart},
	{Key: "v", Label: "Send to review", Kind: engine.KindReview},
	{Key: "t", Label: "Back to To Do", Kind: engine.KindReopen},
	{Key: "d", Label: "Mark done", Kind: engine.KindComplete},
	{Key: "m", Label: "Merge into base", Kind: engine.KindMerge},
	{Key: "x", Label: "Cancel task", Kind: engine.KindCancel},
}

var taskActions = []Action{
	{Key: "e", Label: "Edit task", Kind: engine.KindEditTitle, Enabled: true},
	{Key: "D", Label: "Delete task", Kind: engine.KindDelete, Enabled: true},
}

const separator = "───────────────────────"

// ActionMenu is a menu overlay for task actions
type ActionMenu struct {
	task    domain.Task
	actions []Action
	cursor  int
	styles  *Styles
}

// NewActionMenu creates a new action menu for the given task
func NewActionMenu(task domain.Task) *ActionMenu {
	menu := &ActionMenu{
		task:   task,
		styles: New(),
	}
	menu.actions = buildActions(task.Status)
	menu.cursor = menu.firstEnabled()
	return menu
}

// buildActions enables the lifecycle entries the status allows.
func buildActions(status domain.Status) []Action {
	allowed := map[engine.Kind]bool{}
	for _, k := range engine.Allowed(status) {
		allowed[k] = true
	}

	actions := make([]Action, 0, len(lifecycleActions)+len(taskActions)+1)
	for _, a := range lifecycleActions {
		a.Enabled = allowed[a.Kind]
		actions = append(actions, a)
	}
	actions = append(actions, Action{Label: separator})
	actions = append(actions, taskActions...)
	return actions
}

func (m *ActionMenu) firstEnabled() int {
	for i, a := range m.actions {
		if a.Enabled {
			return i
		}
	}
	return 0
}

// Actions returns the menu entries, separators included.
func (m *ActionMenu) Actions() []Action {
	return m.actions
}

// Init initializes the menu
func (m *ActionMenu) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ActionMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc", "q", " ":
		return m, closeCmd
	case "j", "down":
		m.move(1)
		return m, nil
	case "k", "up":
		m.move(-1)
		return m, nil
	case "enter":
		return m, m.choose(m.actions[m.cursor])
	default:
		for _, a := range m.actions {
			if a.Key != "" && a.Key == key.String() {
				return m, m.choose(a)
			}
		}
	}
	return m, nil
}

// move steps the cursor over enabled entries only.
func (m *ActionMenu) move(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.actions); i += delta {
		if m.actions[i].Enabled {
			m.cursor = i
			return
		}
	}
}

func (m *ActionMenu) choose(a Action) tea.Cmd {
	if !a.Enabled || a.Key == "" {
		return nil
	}
	msg := ActionSelectedMsg{TaskID: m.task.ID, Kind: a.Kind}
	return func() tea.Msg { return msg }
}

// View renders the menu
func (m *ActionMenu) View() string {
	var b strings.Builder

	for i, action := range m.actions {
		if action.Key == "" {
			b.WriteString(m.styles.Separator.Render(action.Label))
			b.WriteString("\n")
			continue
		}

		style, keyStyle := m.styles.MenuItem, m.styles.MenuKey
		if !action.Enabled {
			style = m.styles.MenuItemDisabled
			keyStyle = m.styles.MenuKeyDisabled
		} else if i == m.cursor {
			style = m.styles.MenuItemActive
		}
		b.WriteString(keyStyle.Render("["+action.Key+"]") + " " + style.Render(action.Label))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Footer.Render("j/k: move • enter: select • esc: close"))
	return b.String()
}

// Title returns the menu title
func (m *ActionMenu) Title() string {
	return m.task.ID + " · " + m.task.Status.String()
}

// Size returns the menu dimensions
func (m *ActionMenu) Size() (width, height int) {
	return 36, len(m.actions) + 3
}
