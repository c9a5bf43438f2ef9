package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tbx/internal/command"
	"github.com/oakwood-commons/tbx/internal/query"
	"github.com/oakwood-commons/tbx/internal/search"
	"github.com/oakwood-commons/tbx/internal/table"
)

func col(t *testing.T, name string, cells ...string) *table.Column {
	t.Helper()
	b := table.NewBuilder(name)
	for _, c := range cells {
		b.Append(c)
	}
	return b.Finish()
}

func people(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		col(t, "name", "Jon", "Mary", "Ann", "Bob"),
		col(t, "age", "35", "28", "41", "31"),
	)
	require.NoError(t, err)
	return tbl
}

func TestHistoryPushAndRecall(t *testing.T) {
	h := NewHistory(3)
	h.Push("filter age > 30")
	h.Push("order name")
	h.Push("order name") // consecutive dup collapses
	require.Equal(t, 2, h.Len())

	latest, ok := h.At(0)
	require.True(t, ok)
	assert.Equal(t, "order name", latest)

	h.Push("select name")
	h.Push("quit")
	assert.Equal(t, 3, h.Len(), "ring drops the oldest entry")
	_, ok = h.At(3)
	assert.False(t, ok)
}

func TestHistoryWithPrefix(t *testing.T) {
	h := NewHistory(10)
	h.Push("filter a > 1")
	h.Push("order a")
	h.Push("filter b > 2")
	assert.Equal(t, []string{"filter b > 2", "filter a > 1"}, h.WithPrefix("filter"))
	assert.Len(t, h.WithPrefix(""), 3)
	assert.Empty(t, h.WithPrefix("zz"))
}

func TestTabInstallDropsStaleGenerations(t *testing.T) {
	tab := NewTab(1, "t", "", people(t))
	gen1 := tab.NextGeneration()
	gen2 := tab.NextGeneration()
	require.True(t, tab.Busy())

	filtered := people(t).Gather([]int{0})
	// newest result lands first; the older one must be dropped
	require.True(t, tab.Install(gen2, filtered, nil))
	assert.False(t, tab.Install(gen1, people(t), nil))
	assert.Equal(t, 1, tab.View().NumRows())
	assert.False(t, tab.Busy())
}

func TestTabInstallErrorKeepsPreviousView(t *testing.T) {
	tab := NewTab(1, "t", "", people(t))
	gen := tab.NextGeneration()
	require.True(t, tab.Install(gen, nil, &query.Error{Kind: query.ErrUnknownColumn, Column: "x"}))
	assert.Equal(t, 4, tab.View().NumRows(), "previous view survives a rejected step")
	assert.Error(t, tab.ViewErr())

	gen = tab.NextGeneration()
	require.True(t, tab.Install(gen, people(t).Gather([]int{0, 1}), nil))
	assert.NoError(t, tab.ViewErr(), "successful install clears the error")
}

func TestTabCursorClampsAfterViewShrink(t *testing.T) {
	tab := NewTab(1, "t", "", people(t))
	tab.SetCursor(3, 1)
	gen := tab.NextGeneration()
	require.True(t, tab.Install(gen, people(t).Gather([]int{0}), nil))
	assert.Equal(t, 0, tab.Cursor.Row)
	assert.Equal(t, 1, tab.Cursor.Col)
}

func TestWorkspaceTabLifecycle(t *testing.T) {
	ws := New(0)
	ws.AddTab("a", "a.csv", people(t))
	ws.AddTab("b", "b.csv", people(t))
	ws.AddTab("a", "a2.csv", people(t))

	names := []string{ws.Tabs()[0].Name, ws.Tabs()[1].Name, ws.Tabs()[2].Name}
	assert.Equal(t, []string{"a", "b", "a (2)"}, names)

	ws.SetActive(0)
	ws.SwitchTab(-1)
	assert.Equal(t, 2, ws.ActiveIndex(), "previous from first wraps to last")
	ws.SwitchTab(1)
	assert.Equal(t, 0, ws.ActiveIndex())

	require.True(t, ws.CloseActive())
	assert.Equal(t, 2, ws.NumTabs())
	require.True(t, ws.CloseActive())
	assert.False(t, ws.CloseActive(), "closing the last tab ends the session")
}

func TestTabNameForPath(t *testing.T) {
	assert.Equal(t, "data", TabNameForPath("/tmp/data.csv"))
	assert.Equal(t, "db", TabNameForPath("db.sqlite"))
}

func TestSearchStateStepWraps(t *testing.T) {
	s := SearchState{Matches: []search.Match{{Row: 0}, {Row: 1}, {Row: 2}}}
	m, ok := s.Step(1)
	require.True(t, ok)
	assert.Equal(t, 1, m.Row)
	s.Current = 2
	m, _ = s.Step(1)
	assert.Equal(t, 0, m.Row, "next past the end wraps")
	m, _ = s.Step(-1)
	assert.Equal(t, 2, m.Row, "previous before the start wraps")
}

func TestSchedulerLatestGenerationWins(t *testing.T) {
	base := people(t)
	ws := New(0)
	tab := ws.AddTab("t", "", base)
	sched := NewScheduler(2)
	defer sched.Close()
	engine := NewEngine(ws, sched, nil)

	// Two quick edits: the second supersedes the first before its result
	// is installed.
	tab.Pipeline().Push(query.FilterStep{Expr: "age > 30"})
	engine.Reevaluate(tab)
	tab.Pipeline().Push(query.SortStep{Keys: []query.SortKey{{Column: "name"}}})
	engine.Reevaluate(tab)

	deadline := time.After(5 * time.Second)
	for tab.Busy() {
		select {
		case r := <-sched.Results():
			engine.HandleResult(r)
		case <-deadline:
			t.Fatal("scheduler results did not arrive")
		}
	}

	require.Equal(t, 3, tab.View().NumRows())
	assert.Equal(t, "Ann", tab.View().Format(0, 0), "final view reflects the newest pipeline")
	assert.NoError(t, tab.ViewErr())
}

func TestEngineRejectedStepIsPopped(t *testing.T) {
	ws := New(0)
	tab := ws.AddTab("t", "", people(t))
	sched := NewScheduler(1)
	defer sched.Close()
	engine := NewEngine(ws, sched, nil)

	res, err := engine.Dispatch(command.PipelineEdit{Step: query.FilterStep{Expr: "missing > 1"}})
	require.NoError(t, err)
	require.True(t, res.Scheduled)

	r := <-sched.Results()
	require.Error(t, r.Err)
	require.True(t, engine.HandleResult(r))

	assert.Equal(t, 0, tab.Pipeline().Len(), "rejected step is removed")
	assert.Equal(t, 4, tab.View().NumRows(), "previous view kept")
}

func TestEngineDispatchFindAndStep(t *testing.T) {
	ws := New(0)
	tab := ws.AddTab("t", "", people(t))
	sched := NewScheduler(1)
	defer sched.Close()
	engine := NewEngine(ws, sched, nil)

	res, err := engine.Dispatch(command.Find{Query: "o", Mode: search.ModeLiteral})
	require.NoError(t, err)
	assert.Contains(t, res.Status, "matches")
	assert.Equal(t, 0, tab.Cursor.Row, "cursor on first match (Jon)")

	_, err = engine.Dispatch(command.FindStep{Delta: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, tab.Cursor.Row, "next match is Bob")
}

func TestEngineDispatchGoto(t *testing.T) {
	ws := New(0)
	tab := ws.AddTab("t", "", people(t))
	sched := NewScheduler(1)
	defer sched.Close()
	engine := NewEngine(ws, sched, nil)

	_, err := engine.Dispatch(command.Goto{Row: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, tab.Cursor.Row)

	_, err = engine.Dispatch(command.Goto{Row: -1, Percent: 100})
	require.NoError(t, err)
	assert.Equal(t, 3, tab.Cursor.Row)

	_, err = engine.Dispatch(command.Goto{Row: 100})
	require.NoError(t, err)
	assert.Equal(t, 3, tab.Cursor.Row, "out-of-range row clamps")
}

func TestEngineDispatchQuitOnLastTabClose(t *testing.T) {
	ws := New(0)
	ws.AddTab("t", "", people(t))
	sched := NewScheduler(1)
	defer sched.Close()
	engine := NewEngine(ws, sched, nil)

	res, err := engine.Dispatch(command.TabClose{})
	require.NoError(t, err)
	assert.True(t, res.Quit)
}

func TestEngineDispatchUndoEmptyPipeline(t *testing.T) {
	ws := New(0)
	ws.AddTab("t", "", people(t))
	sched := NewScheduler(1)
	defer sched.Close()
	engine := NewEngine(ws, sched, nil)

	res, err := engine.Dispatch(command.Undo{})
	require.NoError(t, err)
	assert.False(t, res.Scheduled)
	assert.Equal(t, "nothing to undo", res.Status)
}
