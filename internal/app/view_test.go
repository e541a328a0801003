package app

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/types"
)

func lineCount(view string) int {
	return len(strings.Split(strings.TrimRight(view, "\n"), "\n"))
}

func TestViewHeight(t *testing.T) {
	env := newTestEnv(
		task("abc1234", "Fix login", domain.StatusTodo),
		task("def5678", "Write docs", domain.StatusInProgress),
	)
	m := newTestModel(t, env)
	m.height = 24

	t.Run("normal view", func(t *testing.T) {
		if got := lineCount(m.View()); got > m.height {
			t.Errorf("view is too tall: got %d lines, want %d", got, m.height)
		}
	})

	t.Run("with overlay", func(t *testing.T) {
		m.overlayStack.Push(&testOverlay{})
		defer m.overlayStack.Pop()
		view := m.View()
		if got := lineCount(view); got > m.height {
			t.Errorf("view with overlay is too tall: got %d lines, want %d", got, m.height)
		}
		if !strings.Contains(ansi.Strip(view), "test overlay") {
			t.Error("overlay not drawn")
		}
	})

	t.Run("with toasts", func(t *testing.T) {
		m.toasts = append(m.toasts, types.Toast{
			Message: "test toast",
			Expires: time.Now().Add(time.Hour),
		})
		view := m.View()
		if got := lineCount(view); got > m.height {
			t.Errorf("view with toasts is too tall: got %d lines, want %d", got, m.height)
		}
		if !strings.Contains(ansi.Strip(view), "test toast") {
			t.Error("toast not drawn")
		}
	})
}

func TestView_Content(t *testing.T) {
	env := newTestEnv(task("abc1234", "Fix login", domain.StatusTodo))
	m := newTestModel(t, env)
	m.width = 180

	view := ansi.Strip(m.View())
	for _, want := range []string{"To Do", "In Progress", "Fix login", "NORMAL", "1 tasks", "base: main"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.busy = true
	m.mode = ModeBusy
	view = ansi.Strip(m.View())
	if !strings.Contains(view, "BUSY") || !strings.Contains(view, "working...") {
		t.Error("busy state not shown")
	}
}

func TestView_NotSized(t *testing.T) {
	m := New(newTestEnv().eng)
	if m.View() != "Loading..." {
		t.Errorf("View() = %q", m.View())
	}
}

type testOverlay struct{}

func (o *testOverlay) View() string                            { return "test overlay" }
func (o *testOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) { return o, nil }
func (o *testOverlay) Init() tea.Cmd                           { return nil }
func (o *testOverlay) Title() string                           { return "Test" }
func (o *testOverlay) Size() (int, int)                        { return 20, 3 }
