package ui

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/tbx/internal/command"
	"github.com/oakwood-commons/tbx/internal/search"
	"github.com/oakwood-commons/tbx/internal/workspace"
	"github.com/oakwood-commons/tbx/pkg/loader"
)

// Mode determines message routing in the root model.
type Mode int

const (
	// NavigationMode is the default grid-browsing mode.
	NavigationMode Mode = iota
	// CommandMode has the ':' command line open.
	CommandMode
	// SearchMode has the '/' incremental search line open.
	SearchMode
	// HelpMode displays the key reference overlay.
	HelpMode
	// SchemaMode displays the schema overlay.
	SchemaMode
)

// resultMsg delivers one finished pipeline evaluation from the scheduler.
type resultMsg struct{ r workspace.Result }

// tabLoadedMsg delivers an asynchronously opened file.
type tabLoadedMsg struct {
	sources []loader.Source
	err     error
}

// Model is the root bubbletea model. It routes keys by mode, drains the
// scheduler's result channel, and renders the whole screen each frame.
type Model struct {
	engine     *workspace.Engine
	loaderOpts loader.Options

	mode     Mode
	layout   *LayoutManager
	grid     GridRenderer
	tabBar   TabBarModel
	help     HelpModel
	schema   SchemaModel
	prompt   PromptModel
	theme    Theme
	noColor  bool
	pendingG bool

	width  int
	height int

	message    string
	msgIsError bool

	quitting bool
}

// NewModel builds the root model around an engine.
func NewModel(engine *workspace.Engine, theme Theme, noColor bool, gridCfg GridConfig, opts loader.Options) *Model {
	return &Model{
		engine:     engine,
		loaderOpts: opts,
		mode:       NavigationMode,
		layout:     NewLayoutManager(80, 24, gridCfg),
		grid:       GridRenderer{Theme: theme, NoColor: noColor},
		tabBar:     TabBarModel{NoColor: noColor, Width: 80},
		help:       HelpModel{NoColor: noColor},
		schema:     SchemaModel{NoColor: noColor},
		prompt:     NewPromptModel(engine.Workspace.History),
		theme:      theme,
		noColor:    noColor,
		width:      80,
		height:     24,
	}
}

// Init starts draining scheduler results.
func (m *Model) Init() tea.Cmd {
	return m.listenResults()
}

// listenResults blocks on the scheduler's result channel. The command
// re-arms itself after every delivery so results keep flowing for the life
// of the program.
func (m *Model) listenResults() tea.Cmd {
	results := m.engine.Scheduler.Results()
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return nil
		}
		return resultMsg{r}
	}
}

func (m *Model) loadCmd(path string) tea.Cmd {
	opts := m.loaderOpts
	return func() tea.Msg {
		sources, err := loader.Load(context.Background(), path, opts)
		return tabLoadedMsg{sources: sources, err: err}
	}
}

// Update handles messages and routes keys by mode.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout.SetDimensions(msg.Width, msg.Height)
		m.tabBar.Width = msg.Width
		m.prompt.SetWidth(msg.Width)
		return m, nil

	case resultMsg:
		if m.engine.HandleResult(msg.r) && msg.r.Err != nil {
			m.setError(msg.r.Err.Error())
		}
		return m, m.listenResults()

	case tabLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err.Error())
			return m, nil
		}
		for _, src := range msg.sources {
			m.engine.Workspace.AddTab(src.Name, src.Path, src.Table)
		}
		m.setMessage(fmt.Sprintf("opened %d table(s)", len(msg.sources)))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && m.mode == NavigationMode {
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case HelpMode, SchemaMode:
		switch msg.String() {
		case "esc", "q", "?", "i", "enter":
			m.mode = NavigationMode
		}
		return m, nil

	case CommandMode:
		outcome, cmd := m.prompt.Update(msg)
		switch {
		case outcome.Canceled:
			m.mode = NavigationMode
		case outcome.Submitted:
			m.mode = NavigationMode
			if strings.TrimSpace(outcome.Line) != "" {
				m.engine.Workspace.History.Push(outcome.Line)
				return m, m.runCommand(outcome.Line)
			}
		}
		return m, cmd

	case SearchMode:
		outcome, cmd := m.prompt.Update(msg)
		switch {
		case outcome.Canceled:
			m.mode = NavigationMode
			m.clearSearch()
		case outcome.Submitted:
			m.mode = NavigationMode
		case outcome.Changed:
			m.liveSearch(m.prompt.Value())
		}
		return m, cmd

	default:
		return m.handleNavKey(msg)
	}
}

func (m *Model) handleNavKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := LookupNavAction(msg.String(), m.pendingG)
	m.pendingG = action == NavActionPendingG

	t := m.engine.Workspace.Active()
	if t == nil {
		if action == NavActionQuit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	bodyRows := m.layout.CalculateHeights().BodyHeight
	if bodyRows < 1 {
		bodyRows = 1
	}

	switch action {
	case NavActionDown:
		t.MoveCursor(1, 0)
	case NavActionUp:
		t.MoveCursor(-1, 0)
	case NavActionLeft:
		t.MoveCursor(0, -1)
	case NavActionRight:
		t.MoveCursor(0, 1)
	case NavActionTop:
		t.SetCursor(0, t.Cursor.Col)
	case NavActionBottom:
		t.SetCursor(t.View().NumRows()-1, t.Cursor.Col)
	case NavActionFirstCol:
		t.SetCursor(t.Cursor.Row, 0)
	case NavActionLastCol:
		t.SetCursor(t.Cursor.Row, t.View().NumCols()-1)
	case NavActionHalfDown:
		t.MoveCursor(bodyRows/2, 0)
	case NavActionHalfUp:
		t.MoveCursor(-bodyRows/2, 0)
	case NavActionPageDown:
		t.MoveCursor(bodyRows, 0)
	case NavActionPageUp:
		t.MoveCursor(-bodyRows, 0)
	case NavActionCommand:
		m.mode = CommandMode
		m.message = ""
		return m, m.prompt.Open(PromptCommand, m.width)
	case NavActionSearch:
		m.mode = SearchMode
		m.message = ""
		return m, m.prompt.Open(PromptSearch, m.width)
	case NavActionNextMatch:
		return m, m.runParsed(command.FindStep{Delta: 1})
	case NavActionPrevMatch:
		return m, m.runParsed(command.FindStep{Delta: -1})
	case NavActionNextTab:
		return m, m.runParsed(command.TabSwitch{Delta: 1})
	case NavActionPrevTab:
		return m, m.runParsed(command.TabSwitch{Delta: -1})
	case NavActionUndo:
		return m, m.runParsed(command.Undo{})
	case NavActionHelp:
		m.mode = HelpMode
	case NavActionSchema:
		m.mode = SchemaMode
	case NavActionQuit:
		m.quitting = true
		return m, tea.Quit
	case NavActionClearSearch:
		m.clearSearch()
	}
	return m, nil
}

// runCommand parses and dispatches one command line.
func (m *Model) runCommand(line string) tea.Cmd {
	cmd, err := command.Parse(line)
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	return m.runParsed(cmd)
}

func (m *Model) runParsed(cmd command.Command) tea.Cmd {
	res, err := m.engine.Dispatch(cmd)
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	if res.Status != "" {
		m.setMessage(res.Status)
	} else {
		m.message = ""
	}
	switch {
	case res.Quit:
		m.quitting = true
		return tea.Quit
	case res.OpenPath != "":
		return m.loadCmd(res.OpenPath)
	case res.ToggleHelp:
		m.mode = HelpMode
	case res.ToggleSchema:
		m.mode = SchemaMode
	}
	return nil
}

// liveSearch recomputes literal matches as the search line is typed.
func (m *Model) liveSearch(query string) {
	t := m.engine.Workspace.Active()
	if t == nil {
		return
	}
	s := &m.engine.Workspace.Search
	s.Query = query
	s.Mode = search.ModeLiteral
	s.CaseSensitive = false
	_ = s.Recompute(t.View())
	if match, ok := s.First(); ok {
		t.SetCursor(match.Row, match.Col)
	}
}

func (m *Model) clearSearch() {
	s := &m.engine.Workspace.Search
	s.Query = ""
	s.Matches = nil
	s.Current = 0
	m.message = ""
}

func (m *Model) setMessage(text string) {
	m.message = text
	m.msgIsError = false
}

func (m *Model) setError(text string) {
	m.message = text
	m.msgIsError = true
}

// View renders the full screen: tab bar, grid or overlay, status bar, and
// the prompt line.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder
	ws := m.engine.Workspace
	b.WriteString(m.tabBar.View(ws, m.theme))
	b.WriteString("\n")

	t := ws.Active()
	heights := m.layout.CalculateHeights()
	switch {
	case t == nil:
		b.WriteString("no open tabs\n")
	case m.mode == HelpMode:
		b.WriteString(m.help.View(m.theme, m.width))
	case m.mode == SchemaMode:
		b.WriteString(m.schema.View(t.View(), m.theme))
	default:
		frame, scroll := m.layout.Layout(t.View(), t.Cursor, t.Scroll)
		t.Scroll = scroll
		for _, line := range m.grid.RenderHeader(t.View(), frame) {
			b.WriteString(line + "\n")
		}
		body := m.grid.RenderBody(t.View(), frame, t.Cursor, ws.Search.Matches)
		for _, line := range body {
			b.WriteString(line + "\n")
		}
		for i := len(body); i < heights.BodyHeight; i++ {
			b.WriteString("\n")
		}
	}

	b.WriteString(m.statusLine(t))
	b.WriteString("\n")
	if m.mode == CommandMode || m.mode == SearchMode {
		b.WriteString(m.prompt.View())
	}

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

func (m *Model) statusLine(t *workspace.Tab) string {
	status := StatusModel{
		Message: m.message,
		IsError: m.msgIsError,
		NoColor: m.noColor,
		Width:   m.width,
	}
	if t != nil {
		status.Busy = t.Busy()
		status.Pipeline = t.Pipeline().String()
		status.CursorRow = t.Cursor.Row + 1
		status.CursorCol = t.Cursor.Col + 1
		status.TotalRows = t.View().NumRows()
		status.TotalCols = t.View().NumCols()
	}
	s := &m.engine.Workspace.Search
	if s.Query != "" {
		status.SearchQuery = s.Query
		if len(s.Matches) > 0 {
			status.MatchLabel = fmt.Sprintf("%d/%d", s.Current+1, len(s.Matches))
		} else {
			status.MatchLabel = "0/0"
		}
	}
	return status.View(m.theme)
}
