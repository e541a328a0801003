// Package app contains the main application model and TEA implementation.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vibedove/vibedove/internal/config"
	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/engine"
	"github.com/vibedove/vibedove/internal/services/navigation"
	"github.com/vibedove/vibedove/internal/types"
	"github.com/vibedove/vibedove/internal/ui/board"
	"github.com/vibedove/vibedove/internal/ui/overlay"
	"github.com/vibedove/vibedove/internal/ui/statusbar"
	"github.com/vibedove/vibedove/internal/ui/styles"
	"github.com/vibedove/vibedove/internal/ui/toast"
)

// Re-export Mode type and constants for convenience
type Mode = types.Mode

const (
	ModeNormal = types.ModeNormal
	ModeGoto   = types.ModeGoto
	ModeSearch = types.ModeSearch
	ModeBusy   = types.ModeBusy
)

// Re-export Toast type and constants for convenience
type Toast = types.Toast
type ToastLevel = types.ToastLevel

const (
	ToastInfo    = types.ToastInfo
	ToastSuccess = types.ToastSuccess
	ToastWarning = types.ToastWarning
	ToastError   = types.ToastError
)

// ReloadFunc re-reads the global and project configuration.
type ReloadFunc func() (*config.Config, *config.ProjectConfig, error)

// Model is the board TUI. It renders the board loaded through the engine
// and turns keys into engine commands; it never edits tasks itself.
type Model struct {
	engine *engine.Engine
	board  domain.Board
	loaded bool

	// Navigation (using NavigationService)
	nav *navigation.Service

	// Board view state
	mode   Mode
	filter *domain.Filter
	sort   *domain.Sort

	overlayStack *overlay.Stack

	toasts  []Toast
	message string

	// busy is set while a command runs; transition keys are ignored.
	busy    bool
	spinner spinner.Model

	// Terminal size
	width  int
	height int

	styles *styles.Styles

	changes    <-chan struct{}
	reload     ReloadFunc
	configPath string

	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithChanges reloads the board whenever ch signals.
func WithChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

// WithReload sets how the r key re-reads configuration.
func WithReload(fn ReloadFunc) Option {
	return func(m *Model) { m.reload = fn }
}

// WithConfigPath sets where the c key saves the global configuration.
func WithConfigPath(path string) Option {
	return func(m *Model) { m.configPath = path }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a new application model driving eng.
func New(eng *engine.Engine, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Yellow)

	m := Model{
		engine:       eng,
		nav:          navigation.NewService(),
		mode:         ModeNormal,
		filter:       domain.NewFilter(),
		sort:         &domain.Sort{Field: domain.SortByBoard},
		overlayStack: overlay.NewStack(),
		spinner:      s,
		styles:       styles.New(),
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

type boardLoadedMsg struct {
	board domain.Board
}

type boardErrorMsg struct {
	err error
}

type boardChangedMsg struct{}

type tickMsg time.Time

type resultMsg struct {
	result engine.Result
	err    error
}

type configReloadedMsg struct {
	cfg     *config.Config
	project *config.ProjectConfig
	err     error
}

type configSavedMsg struct {
	path string
	err  error
}

// Init returns the initial command for the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadBoardCmd(),
		m.waitForChange(),
		tickEvery(time.Second),
	)
}

func (m Model) loadBoardCmd() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		b, err := eng.Board(context.Background())
		if err != nil {
			return boardErrorMsg{err: err}
		}
		return boardLoadedMsg{board: b}
	}
}

// waitForChange blocks on the change channel; it is re-armed after every
// notification.
func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return boardChangedMsg{}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.toasts = toast.Prune(m.toasts, m.now())
		return m, tickEvery(time.Second)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.overlayStack.IsEmpty() {
			return m, m.overlayStack.Update(msg)
		}
		return m.handleKey(msg)

	case boardLoadedMsg:
		m.board = msg.board
		m.loaded = true
		return m, nil

	case boardErrorMsg:
		m.loaded = true
		m.addToast(ToastError, msg.err.Error())
		return m, nil

	case boardChangedMsg:
		if m.busy {
			// the running command returns the fresh board
			return m, m.waitForChange()
		}
		return m, tea.Batch(m.loadBoardCmd(), m.waitForChange())

	case resultMsg:
		return m.handleResult(msg)

	case configReloadedMsg:
		if msg.err != nil {
			m.addToast(ToastWarning, "config: "+msg.err.Error())
		}
		m.engine = m.engine.WithConfig(msg.cfg, msg.project)
		m.addToast(ToastInfo, "Reloaded board and config")
		return m, m.loadBoardCmd()

	case configSavedMsg:
		if msg.err != nil {
			m.addToast(ToastError, msg.err.Error())
		} else {
			m.addToast(ToastSuccess, "Saved config to "+msg.path)
		}
		return m, nil

	// Overlay messages
	case overlay.CloseOverlayMsg:
		m.overlayStack.Pop()
		return m, nil

	case overlay.SelectionMsg:
		m.overlayStack.Pop()
		if res, ok := msg.Value.(overlay.ConfirmResult); ok && res.Confirmed {
			if cmd, ok := res.Payload.(engine.Command); ok {
				return m.dispatch(cmd)
			}
		}
		return m, nil

	case overlay.ActionSelectedMsg:
		m.overlayStack.Pop()
		task, err := m.board.Find(msg.TaskID)
		if err != nil {
			return m, nil
		}
		return m.runAction(task, msg.Kind)

	case overlay.TaskSubmittedMsg:
		m.overlayStack.Pop()
		return m.submitTask(msg)

	case overlay.SearchMsg:
		m.filter.SearchQuery = msg.Query
		if s, ok := m.overlayStack.Current().(*overlay.SearchOverlay); ok {
			s.SetMatchCount(len(m.filter.Apply(m.board.Tasks)))
		}
		return m, nil

	case overlay.FilterChangedMsg, overlay.SortChangedMsg:
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input based on current mode
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeGoto {
		return m.handleGotoMode(msg)
	}
	return m.handleNormalMode(msg)
}

// handleNormalMode processes keyboard input in normal mode
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.buildColumns()
	task := m.nav.CurrentTask(columns)

	switch msg.String() {
	case "q":
		return m, tea.Quit

	// Vertical navigation
	case "j", "down":
		m.nav.MoveDown(columns)
	case "k", "up":
		m.nav.MoveUp(columns)

	// Horizontal navigation
	case "h", "left":
		m.nav.MoveLeft(columns)
	case "l", "right":
		m.nav.MoveRight(columns)

	// Half-page scroll
	case "ctrl+d":
		m.nav.HalfPageDown(columns, m.halfPage())
	case "ctrl+u":
		m.nav.HalfPageUp(columns, m.halfPage())

	case "g":
		m.mode = ModeGoto

	case "esc":
		if m.filter.SearchQuery != "" {
			m.filter.SearchQuery = ""
		}

	case "?":
		return m, m.overlayStack.Push(overlay.NewHelpOverlay())
	case "/":
		s := overlay.NewSearchOverlay(m.filter.SearchQuery)
		s.SetMatchCount(len(m.filter.Apply(m.board.Tasks)))
		return m, m.overlayStack.Push(s)
	case "f":
		return m, m.overlayStack.Push(overlay.NewFilterMenu(m.filter))
	case ",":
		return m, m.overlayStack.Push(overlay.NewSortMenu(m.sort))

	case "n":
		return m, m.overlayStack.Push(overlay.NewTaskForm())

	case "r":
		return m, m.reloadCmd()
	case "c":
		return m, m.saveConfigCmd()

	case "enter":
		if task != nil {
			return m, m.overlayStack.Push(overlay.NewDetailPanel(*task))
		}
	case " ":
		if task != nil {
			return m, m.overlayStack.Push(overlay.NewActionMenu(*task))
		}

	default:
		if kind, ok := keyKinds[msg.String()]; ok && task != nil {
			return m.runAction(*task, kind)
		}
	}
	return m, nil
}

// keyKinds maps board keys to the command they run on the selected task.
var keyKinds = map[string]engine.Kind{
	"s": engine.KindStart,
	"v": engine.KindReview,
	"t": engine.KindReopen,
	"d": engine.KindComplete,
	"m": engine.KindMerge,
	"x": engine.KindCancel,
	"e": engine.KindEditTitle,
	"D": engine.KindDelete,
}

// handleGotoMode processes keyboard input in goto mode
func (m Model) handleGotoMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.buildColumns()
	m.mode = ModeNormal
	if m.busy {
		m.mode = ModeBusy
	}

	switch msg.String() {
	case "g":
		m.nav.GotoTop(columns)
	case "e":
		m.nav.GotoBottom(columns)
	case "h":
		m.nav.GotoFirstColumn(columns)
	case "l":
		m.nav.GotoLastColumn(columns)
	}
	return m, nil
}

// runAction turns a chosen kind into an engine command. Edits open the
// form; cancel and delete ask first.
func (m Model) runAction(task domain.Task, kind engine.Kind) (tea.Model, tea.Cmd) {
	switch kind {
	case engine.KindEditTitle, engine.KindEditDescription:
		return m, m.overlayStack.Push(overlay.NewEditForm(task))
	case engine.KindDelete:
		return m, m.overlayStack.Push(overlay.NewConfirmDialog(
			"Delete task",
			fmt.Sprintf("Delete %s %q? Its worktree and branch are removed.", task.ID, task.Title),
			engine.Delete{ID: task.ID},
		))
	case engine.KindCancel:
		if _, ok := engine.Target(task.Status, kind); !ok {
			break
		}
		return m, m.overlayStack.Push(overlay.NewConfirmDialog(
			"Cancel task",
			fmt.Sprintf("Cancel %s? Its worktree and branch are discarded.", task.ID),
			engine.Cancel{ID: task.ID},
		))
	}

	cmd, ok := commandFor(kind, task.ID)
	if !ok {
		return m, nil
	}
	return m.dispatch(cmd)
}

func commandFor(kind engine.Kind, id string) (engine.Command, bool) {
	switch kind {
	case engine.KindStart:
		return engine.Start{ID: id}, true
	case engine.KindReview:
		return engine.Review{ID: id}, true
	case engine.KindReopen:
		return engine.Reopen{ID: id}, true
	case engine.KindComplete:
		return engine.Complete{ID: id}, true
	case engine.KindMerge:
		return engine.Merge{ID: id}, true
	case engine.KindCancel:
		return engine.Cancel{ID: id}, true
	case engine.KindDelete:
		return engine.Delete{ID: id}, true
	}
	return nil, false
}

// submitTask creates a task, or applies the title and description edits
// that actually changed.
func (m Model) submitTask(msg overlay.TaskSubmittedMsg) (tea.Model, tea.Cmd) {
	if msg.ID == "" {
		return m.dispatch(engine.Create{Title: msg.Title, Description: msg.Description})
	}

	task, err := m.board.Find(msg.ID)
	if err != nil {
		m.addToast(ToastError, err.Error())
		return m, nil
	}
	var cmds []engine.Command
	if msg.Title != task.Title {
		cmds = append(cmds, engine.EditTitle{ID: msg.ID, Title: msg.Title})
	}
	if strings.TrimSpace(msg.Description) != task.Description {
		cmds = append(cmds, engine.EditDescription{ID: msg.ID, Description: msg.Description})
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m.dispatch(cmds...)
}

// dispatch runs cmds in order on a background command. While it runs the
// model is busy and further commands are dropped.
func (m Model) dispatch(cmds ...engine.Command) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.mode = ModeBusy
	m.message = ""

	eng := m.engine
	run := func() tea.Msg {
		var res engine.Result
		var notes []string
		for _, c := range cmds {
			var err error
			res, err = eng.Execute(context.Background(), c)
			if err != nil {
				return resultMsg{err: err}
			}
			notes = append(notes, res.Notes...)
		}
		res.Notes = notes
		return resultMsg{result: res}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.mode = ModeNormal

	if msg.err != nil {
		m.message = msg.err.Error()
		m.addToast(ToastError, msg.err.Error())
		m.logger.Warn("command failed", "error", msg.err)
		// the failed command left the board as it was; pick up outside edits
		return m, m.loadBoardCmd()
	}

	res := msg.result
	m.board = res.Board
	m.message = res.Message()
	if len(res.Notes) > 0 {
		m.addToast(ToastWarning, res.Message())
	} else {
		m.addToast(ToastSuccess, res.Message())
	}
	if !res.Removed {
		m.nav.SelectTask(res.Task.ID, res.Task.Status.Column())
	}
	return m, nil
}

func (m Model) reloadCmd() tea.Cmd {
	if m.reload == nil {
		return m.loadBoardCmd()
	}
	reload := m.reload
	return func() tea.Msg {
		cfg, project, err := reload()
		return configReloadedMsg{cfg: cfg, project: project, err: err}
	}
}

func (m Model) saveConfigCmd() tea.Cmd {
	if m.configPath == "" {
		return nil
	}
	path, cfg := m.configPath, m.engine.Config()
	return func() tea.Msg {
		return configSavedMsg{path: path, err: config.SaveGlobal(cfg, path)}
	}
}

func (m *Model) addToast(level ToastLevel, message string) {
	m.toasts = append(m.toasts, Toast{
		Level:   level,
		Message: message,
		Expires: m.now().Add(level.Duration()),
	})
}

// buildColumns converts tasks into board columns, applying filter and sort
func (m Model) buildColumns() []board.Column {
	return board.BuildColumns(m.board.Tasks, m.filter, m.sort)
}

func (m Model) halfPage() int {
	return max(1, (m.height-4)/10)
}
