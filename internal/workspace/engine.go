package workspace

import (
	"fmt"

	"github.com/oakwood-commons/tbx/internal/command"
	"github.com/oakwood-commons/tbx/internal/search"
	"github.com/oakwood-commons/tbx/internal/table"
)

// ExportFunc writes a view table to a destination; the engine treats
// serialization as an external collaborator.
type ExportFunc func(view *table.Table, format, path string) error

// ActionResult tells the caller what a dispatched command did and what, if
// anything, it still has to do (quit, open a file asynchronously).
type ActionResult struct {
	Quit         bool
	OpenPath     string // non-empty: caller should load this file into a new tab
	ToggleHelp   bool
	ToggleSchema bool
	Scheduled    bool   // a pipeline re-evaluation was enqueued
	Status       string // human-readable confirmation for the status line
}

// Engine glues the workspace, the scheduler, and the export collaborator.
// Dispatch applies a parsed command: pipeline edits go through the scheduler
// asynchronously, navigation/search/session commands mutate state directly
// and synchronously because they touch no data.
type Engine struct {
	Workspace *Workspace
	Scheduler *Scheduler
	Export    ExportFunc
}

// NewEngine wires an engine around a workspace and scheduler.
func NewEngine(ws *Workspace, sched *Scheduler, export ExportFunc) *Engine {
	return &Engine{Workspace: ws, Scheduler: sched, Export: export}
}

// Reevaluate bumps the active tab's generation and enqueues a full pipeline
// evaluation against a snapshot of the current step list.
func (e *Engine) Reevaluate(t *Tab) {
	gen := t.NextGeneration()
	e.Scheduler.Submit(t, gen, t.Pipeline().Clone().Steps())
}

// HandleResult installs a completed evaluation. When the installed result is
// a step rejection, the offending step (necessarily the newest one of the
// still-current list) is popped so prior state is preserved exactly.
func (e *Engine) HandleResult(r Result) (installed bool) {
	if !e.Workspace.InstallResult(r) {
		return false
	}
	t := e.Workspace.FindTab(r.TabID)
	if r.Err != nil && t != nil {
		t.Pipeline().Undo()
	}
	if t != nil && e.Workspace.Active() == t && r.Err == nil {
		// The view changed under the search highlights; refresh them.
		_ = e.Workspace.Search.Recompute(t.View())
	}
	return true
}

// Dispatch executes one parsed command against the workspace.
func (e *Engine) Dispatch(cmd command.Command) (ActionResult, error) {
	t := e.Workspace.Active()

	switch c := cmd.(type) {
	case command.PipelineEdit:
		if t == nil {
			return ActionResult{}, fmt.Errorf("no open tab")
		}
		t.Pipeline().Push(c.Step)
		e.Reevaluate(t)
		return ActionResult{Scheduled: true}, nil

	case command.Undo:
		if t == nil {
			return ActionResult{}, fmt.Errorf("no open tab")
		}
		if !t.Pipeline().Undo() {
			return ActionResult{Status: "nothing to undo"}, nil
		}
		e.Reevaluate(t)
		return ActionResult{Scheduled: true}, nil

	case command.Reset:
		if t == nil {
			return ActionResult{}, fmt.Errorf("no open tab")
		}
		t.Pipeline().Reset()
		e.Reevaluate(t)
		return ActionResult{Scheduled: true}, nil

	case command.Find:
		if t == nil {
			return ActionResult{}, fmt.Errorf("no open tab")
		}
		e.Workspace.Search.Query = c.Query
		e.Workspace.Search.Mode = c.Mode
		e.Workspace.Search.CaseSensitive = c.CaseSensitive
		if err := e.Workspace.Search.Recompute(t.View()); err != nil {
			e.Workspace.Search.Query = ""
			return ActionResult{}, err
		}
		if m, ok := e.Workspace.Search.First(); ok {
			t.SetCursor(m.Row, m.Col)
			return ActionResult{Status: fmt.Sprintf("%d matches", len(e.Workspace.Search.Matches))}, nil
		}
		return ActionResult{Status: "no matches"}, nil

	case command.FindStep:
		if t == nil {
			return ActionResult{}, fmt.Errorf("no open tab")
		}
		if m, ok := e.Workspace.Search.Step(c.Delta); ok {
			t.SetCursor(m.Row, m.Col)
			return ActionResult{Status: fmt.Sprintf("match %d/%d",
				e.Workspace.Search.Current+1, len(e.Workspace.Search.Matches))}, nil
		}
		return ActionResult{Status: "no matches"}, nil

	case command.Goto:
		if t == nil {
			return ActionResult{}, fmt.Errorf("no open tab")
		}
		row := c.Row - 1
		if c.Row < 0 { // percent form
			row = int(c.Percent / 100 * float64(t.View().NumRows()-1))
		}
		col := t.Cursor.Col
		if c.Col > 0 {
			col = c.Col - 1
		}
		t.SetCursor(row, col)
		return ActionResult{}, nil

	case command.TabNew:
		return ActionResult{OpenPath: c.Path}, nil

	case command.TabClose:
		if !e.Workspace.CloseActive() {
			return ActionResult{Quit: true}, nil
		}
		if a := e.Workspace.Active(); a != nil {
			_ = e.Workspace.Search.Recompute(a.View())
		}
		return ActionResult{}, nil

	case command.TabSwitch:
		e.Workspace.SwitchTab(c.Delta)
		if a := e.Workspace.Active(); a != nil {
			_ = e.Workspace.Search.Recompute(a.View())
		}
		return ActionResult{}, nil

	case command.Export:
		if t == nil {
			return ActionResult{}, fmt.Errorf("no open tab")
		}
		if e.Export == nil {
			return ActionResult{}, fmt.Errorf("export not available")
		}
		if err := e.Export(t.View(), c.Format, c.Path); err != nil {
			return ActionResult{}, err
		}
		return ActionResult{Status: "exported " + c.Path}, nil

	case command.Help:
		return ActionResult{ToggleHelp: true}, nil

	case command.Schema:
		return ActionResult{ToggleSchema: true}, nil

	case command.Quit:
		return ActionResult{Quit: true}, nil

	default:
		return ActionResult{}, fmt.Errorf("unhandled command %T", cmd)
	}
}

// First resets the cyclic position to the first match and returns it.
func (s *SearchState) First() (search.Match, bool) {
	if len(s.Matches) == 0 {
		return search.Match{}, false
	}
	s.Current = 0
	return s.Matches[0], true
}
