package overlay

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vibedove/vibedove/internal/ui/styles"
)

// SearchMsg is emitted on every keystroke for live filtering
type SearchMsg struct {
	Query string
}

// SearchOverlay provides a search input overlay
type SearchOverlay struct {
	input      textinput.Model
	matchCount int
}

var searchStyle = lipgloss.NewStyle().
	Foreground(styles.Text).
	Background(styles.Surface0)

var matchCountStyle = lipgloss.NewStyle().
	Foreground(styles.Overlay1).
	Background(styles.Surface0)

// NewSearchOverlay creates a search bar seeded with query.
func NewSearchOverlay(query string) *SearchOverlay {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "title, id or branch..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50
	ti.SetValue(query)

	return &SearchOverlay{input: ti}
}

// SetMatchCount updates the match count display
func (s *SearchOverlay) SetMatchCount(count int) {
	s.matchCount = count
}

// Query returns the current input.
func (s *SearchOverlay) Query() string {
	return s.input.Value()
}

// Init implements tea.Model
func (s *SearchOverlay) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model. Enter keeps the query, Esc clears it.
func (s *SearchOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			return s, closeCmd
		case tea.KeyEsc:
			s.input.SetValue("")
			return s, tea.Batch(
				func() tea.Msg { return SearchMsg{} },
				closeCmd,
			)
		}
	}

	prev := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if query := s.input.Value(); query != prev {
		return s, tea.Batch(cmd, func() tea.Msg { return SearchMsg{Query: query} })
	}
	return s, cmd
}

// View implements tea.Model
func (s *SearchOverlay) View() string {
	view := s.input.View()
	if s.input.Value() != "" {
		view += matchCountStyle.Render(fmt.Sprintf(" (%d matches)", s.matchCount))
	}
	return searchStyle.Render(view)
}

// Title implements Overlay; the search bar has none.
func (s *SearchOverlay) Title() string {
	return ""
}

// Size implements Overlay (full-width single line)
func (s *SearchOverlay) Size() (width, height int) {
	return 0, 1
}
