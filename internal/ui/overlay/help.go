package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding represents a single keybinding entry
type KeyBinding struct {
	Key         string
	Description string
}

// KeyCategory represents a category of keybindings
type KeyCategory struct {
	Name     string
	Bindings []KeyBinding
}

// Categories lists every board keybinding shown in the help overlay.
var Categories = []KeyCategory{
	{
		Name: "Navigation",
		Bindings: []KeyBinding{
			{Key: "h/l", Description: "Move between columns"},
			{Key: "j/k", Description: "Move up/down in column"},
			{Key: "gg", Description: "Jump to top of column"},
			{Key: "ge", Description: "Jump to bottom of column"},
			{Key: "gh", Description: "Jump to first column"},
			{Key: "gl", Description: "Jump to last column"},
		},
	},
	{
		Name: "Lifecycle",
		Bindings: []KeyBinding{
			{Key: "s", Description: "Start: create branch and worktree"},
			{Key: "v", Description: "Send to review"},
			{Key: "t", Description: "Back to To Do"},
			{Key: "d", Description: "Mark done (keeps branch)"},
			{Key: "m", Description: "Merge into base branch"},
			{Key: "x", Description: "Cancel task"},
		},
	},
	{
		Name: "Tasks",
		Bindings: []KeyBinding{
			{Key: "n", Description: "New task"},
			{Key: "e", Description: "Edit task"},
			{Key: "D", Description: "Delete task"},
			{Key: "Enter", Description: "Show task details"},
			{Key: "Space", Description: "Open action menu"},
		},
	},
	{
		Name: "Board",
		Bindings: []KeyBinding{
			{Key: "/", Description: "Search"},
			{Key: "f", Description: "Filter menu"},
			{Key: ",", Description: "Sort menu"},
			{Key: "r", Description: "Reload board and config"},
			{Key: "?", Description: "Help (this screen)"},
			{Key: "q", Description: "Quit"},
		},
	},
}

// HelpOverlay displays keybinding reference
type HelpOverlay struct {
	styles     *Styles
	scroll     int
	viewHeight int
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay() *HelpOverlay {
	return &HelpOverlay{
		styles:     New(),
		viewHeight: 20,
	}
}

// Init initializes the overlay
func (h *HelpOverlay) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (h *HelpOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}

	switch key.String() {
	case "esc", "q", "?":
		return h, closeCmd
	case "j", "down":
		h.scroll = min(h.scroll+1, h.maxScroll())
	case "k", "up":
		h.scroll = max(h.scroll-1, 0)
	case "g":
		h.scroll = 0
	case "G":
		h.scroll = h.maxScroll()
	}
	return h, nil
}

func (h *HelpOverlay) lines() []string {
	var lines []string
	for i, cat := range Categories {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, h.styles.Header.Render(cat.Name+":"))
		for _, b := range cat.Bindings {
			key := h.styles.MenuKey.Width(6).Render(b.Key)
			lines = append(lines, "  "+key+"  "+h.styles.MenuItem.Render(b.Description))
		}
	}
	return lines
}

func (h *HelpOverlay) maxScroll() int {
	return max(0, len(h.lines())-h.viewHeight)
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	lines := h.lines()
	end := min(h.scroll+h.viewHeight, len(lines))
	result := strings.Join(lines[h.scroll:end], "\n")

	if h.maxScroll() > 0 {
		result += "\n\n" + h.styles.Footer.Render("[j/k to scroll, g/G to jump]")
	}
	return result
}

// Title returns the overlay title
func (h *HelpOverlay) Title() string {
	return "Help"
}

// Size returns the overlay dimensions
func (h *HelpOverlay) Size() (width, height int) {
	return 50, h.viewHeight + 4
}
