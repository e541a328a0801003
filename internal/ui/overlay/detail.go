package overlay

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/ui/styles"
)

// DetailPanel displays full task details with scrollable description
type DetailPanel struct {
	task       domain.Task
	scrollY    int
	viewHeight int
	styles     *Styles
	badges     *styles.Styles
}

// NewDetailPanel creates a new detail panel for the given task
func NewDetailPanel(task domain.Task) *DetailPanel {
	return &DetailPanel{
		task:       task,
		viewHeight: 10,
		styles:     New(),
		badges:     styles.New(),
	}
}

// Task returns the task being shown.
func (d *DetailPanel) Task() domain.Task {
	return d.task
}

// Init initializes the detail panel
func (d *DetailPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (d *DetailPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	switch key.String() {
	case "esc", "q", "enter":
		return d, closeCmd
	case "j", "down":
		if d.scrollY < d.maxScroll() {
			d.scrollY++
		}
	case "k", "up":
		if d.scrollY > 0 {
			d.scrollY--
		}
	}
	return d, nil
}

func (d *DetailPanel) descriptionLines() []string {
	if d.task.Description == "" {
		return nil
	}
	return strings.Split(d.task.Description, "\n")
}

func (d *DetailPanel) maxScroll() int {
	return max(0, len(d.descriptionLines())-d.viewHeight)
}

// View renders the detail panel
func (d *DetailPanel) View() string {
	t := d.task
	var b strings.Builder

	field := func(name, value string) {
		if value == "" {
			value = d.styles.MenuItemDisabled.Render("none")
		} else {
			value = d.styles.MenuItem.Render(value)
		}
		b.WriteString(d.styles.Label.Render(name) + "  " + value + "\n")
	}

	b.WriteString(d.styles.Header.Render(t.Title))
	b.WriteString("\n\n")
	b.WriteString(d.styles.Label.Render("Status") + "  " + d.badges.StatusBadge(t.Status).Render(t.Status.String()) + "\n")
	field("ID", t.ID)
	field("Branch", t.Branch)
	field("Base", t.BaseBranch)
	field("Worktree", t.WorktreePath)
	field("Created", formatTime(t.CreatedAt))
	field("Updated", formatTime(t.UpdatedAt))

	b.WriteString("\n")
	lines := d.descriptionLines()
	if len(lines) == 0 {
		b.WriteString(d.styles.MenuItemDisabled.Render("No description"))
		b.WriteString("\n")
	} else {
		end := min(d.scrollY+d.viewHeight, len(lines))
		for _, line := range lines[d.scrollY:end] {
			b.WriteString(d.styles.MenuItem.Render(line))
			b.WriteString("\n")
		}
		if d.maxScroll() > 0 {
			b.WriteString(d.styles.Separator.Render("… j/k to scroll"))
			b.WriteString("\n")
		}
	}

	b.WriteString(d.styles.Footer.Render("esc: close"))
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// Title returns the panel title
func (d *DetailPanel) Title() string {
	return "Task " + d.task.ID
}

// Size returns the panel dimensions
func (d *DetailPanel) Size() (width, height int) {
	return 72, 14 + min(len(d.descriptionLines()), d.viewHeight)
}
