package workspace

import (
	"github.com/oakwood-commons/tbx/internal/query"
	"github.com/oakwood-commons/tbx/internal/table"
)

// Cursor is a (row, column) position into the current view table.
type Cursor struct {
	Row int
	Col int
}

// Scroll is the top-left corner of the visible window.
type Scroll struct {
	Top  int
	Left int
}

// Tab wraps one base table, its pipeline, and all per-tab render state.
// The base is shared and read-only; every evaluation produces a fresh view
// table, so no lock guards reads.
type Tab struct {
	ID   int
	Name string
	Path string

	base     *table.Table
	pipeline *query.Pipeline

	// view is the latest installed evaluation result; viewGen its
	// generation. latestGen is the newest generation requested for this
	// tab; results older than latestGen are discarded on arrival.
	view      *table.Table
	viewGen   uint64
	latestGen uint64
	viewErr   error

	Cursor Cursor
	Scroll Scroll
}

// NewTab creates a tab whose initial view is the base itself (generation 0
// result of the empty pipeline).
func NewTab(id int, name, path string, base *table.Table) *Tab {
	return &Tab{
		ID:       id,
		Name:     name,
		Path:     path,
		base:     base,
		pipeline: &query.Pipeline{},
		view:     base,
	}
}

// Base returns the shared base table.
func (t *Tab) Base() *table.Table { return t.base }

// Pipeline returns the live pipeline.
func (t *Tab) Pipeline() *query.Pipeline { return t.pipeline }

// View returns the latest installed view table. It is never nil.
func (t *Tab) View() *table.Table { return t.view }

// ViewErr returns the error of the most recent failed evaluation, if its
// generation is still current; a successful install clears it.
func (t *Tab) ViewErr() error { return t.viewErr }

// Busy reports whether a newer generation than the installed view has been
// requested and has not arrived yet.
func (t *Tab) Busy() bool { return t.latestGen > t.viewGen }

// NextGeneration bumps and returns the tab's latest requested generation.
// Call it once per pipeline mutation, before scheduling the evaluation.
func (t *Tab) NextGeneration() uint64 {
	t.latestGen++
	return t.latestGen
}

// LatestGeneration returns the newest requested generation.
func (t *Tab) LatestGeneration() uint64 { return t.latestGen }

// Install makes a completed evaluation the tab's current view, but only if
// its generation is still the latest requested one; stale results are
// dropped silently so the display never regresses. Returns whether the
// result was installed.
func (t *Tab) Install(gen uint64, view *table.Table, err error) bool {
	if gen != t.latestGen {
		return false
	}
	if err != nil {
		// The step was rejected: keep showing the previous valid view.
		t.viewErr = err
		t.viewGen = gen
		return true
	}
	t.view = view
	t.viewGen = gen
	t.viewErr = nil
	t.clampCursor()
	return true
}

// clampCursor keeps cursor and scroll inside the new view's bounds after a
// view swap (a filter may have removed the row under the cursor).
func (t *Tab) clampCursor() {
	maxRow := t.view.NumRows() - 1
	maxCol := t.view.NumCols() - 1
	if t.Cursor.Row > maxRow {
		t.Cursor.Row = maxRow
	}
	if t.Cursor.Row < 0 {
		t.Cursor.Row = 0
	}
	if t.Cursor.Col > maxCol {
		t.Cursor.Col = maxCol
	}
	if t.Cursor.Col < 0 {
		t.Cursor.Col = 0
	}
	if t.Scroll.Top > t.Cursor.Row {
		t.Scroll.Top = t.Cursor.Row
	}
	if t.Scroll.Left > t.Cursor.Col {
		t.Scroll.Left = t.Cursor.Col
	}
}

// MoveCursor shifts the cursor by (dr, dc), clamped to the view.
func (t *Tab) MoveCursor(dr, dc int) {
	t.Cursor.Row += dr
	t.Cursor.Col += dc
	t.clampCursorOnly()
}

// SetCursor places the cursor, clamped to the view.
func (t *Tab) SetCursor(row, col int) {
	t.Cursor.Row = row
	t.Cursor.Col = col
	t.clampCursorOnly()
}

func (t *Tab) clampCursorOnly() {
	if n := t.view.NumRows(); t.Cursor.Row >= n {
		t.Cursor.Row = n - 1
	}
	if t.Cursor.Row < 0 {
		t.Cursor.Row = 0
	}
	if n := t.view.NumCols(); t.Cursor.Col >= n {
		t.Cursor.Col = n - 1
	}
	if t.Cursor.Col < 0 {
		t.Cursor.Col = 0
	}
}
