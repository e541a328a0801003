package overlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vibedove/vibedove/internal/domain"
)

// TaskSubmittedMsg is emitted when the task form is submitted. ID is empty
// for a new task. The receiver closes the form.
type TaskSubmittedMsg struct {
	ID          string
	Title       string
	Description string
}

const (
	focusTitle = iota
	focusDescription
	focusCount
)

// TaskForm edits the title and description of a new or existing task.
type TaskForm struct {
	id          string
	title       textinput.Model
	description textarea.Model
	focus       int
	err         string
	styles      *Styles
}

// NewTaskForm returns an empty form for creating a task.
func NewTaskForm() *TaskForm {
	ti := textinput.New()
	ti.Placeholder = "Task title..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 56

	ta := textarea.New()
	ta.Placeholder = "Description (optional)..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetWidth(56)
	ta.SetHeight(6)

	return &TaskForm{
		title:       ti,
		description: ta,
		styles:      New(),
	}
}

// NewEditForm returns a form pre-filled from task.
func NewEditForm(task domain.Task) *TaskForm {
	f := NewTaskForm()
	f.id = task.ID
	f.title.SetValue(task.Title)
	f.description.SetValue(task.Description)
	return f
}

// Editing reports whether the form edits an existing task.
func (f *TaskForm) Editing() bool {
	return f.id != ""
}

// Init initializes the form
func (f *TaskForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (f *TaskForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return f, closeCmd
		case "ctrl+s":
			return f, f.submit()
		case "tab", "shift+tab":
			if key.String() == "tab" {
				f.setFocus((f.focus + 1) % focusCount)
			} else {
				f.setFocus((f.focus + focusCount - 1) % focusCount)
			}
			return f, nil
		case "enter":
			if f.focus == focusTitle {
				return f, f.submit()
			}
		}
	}

	var cmd tea.Cmd
	if f.focus == focusTitle {
		f.title, cmd = f.title.Update(msg)
		if strings.TrimSpace(f.title.Value()) != "" {
			f.err = ""
		}
	} else {
		f.description, cmd = f.description.Update(msg)
	}
	return f, cmd
}

func (f *TaskForm) setFocus(i int) {
	f.focus = i
	if i == focusTitle {
		f.title.Focus()
		f.description.Blur()
		return
	}
	f.title.Blur()
	f.description.Focus()
}

func (f *TaskForm) submit() tea.Cmd {
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		f.err = "title is required"
		return nil
	}
	msg := TaskSubmittedMsg{
		ID:          f.id,
		Title:       title,
		Description: f.description.Value(),
	}
	return func() tea.Msg { return msg }
}

// View renders the form
func (f *TaskForm) View() string {
	label := func(name string, i int) string {
		if f.focus == i {
			return f.styles.LabelFocused.Render(name)
		}
		return f.styles.Label.Render(name)
	}

	var b strings.Builder
	b.WriteString(label("Title", focusTitle) + " " + f.title.View())
	b.WriteString("\n")
	if f.err != "" {
		b.WriteString(f.styles.Error.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(label("Description", focusDescription))
	b.WriteString("\n")
	b.WriteString(f.description.View())
	b.WriteString("\n")
	b.WriteString(f.styles.Footer.Render("tab: next field • enter: save (title) • ctrl+s: save • esc: cancel"))
	return b.String()
}

// Title returns the overlay title
func (f *TaskForm) Title() string {
	if f.Editing() {
		return "Edit " + f.id
	}
	return "New Task"
}

// Size returns the overlay dimensions
func (f *TaskForm) Size() (width, height int) {
	return 72, 16
}
