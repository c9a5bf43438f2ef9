// Package workspace owns the set of open tabs, the active-tab pointer,
// command history, and search state, plus the scheduler that evaluates
// pipelines off the UI loop. It has no terminal dependency, so the whole
// engine drives headlessly in tests.
package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oakwood-commons/tbx/internal/search"
	"github.com/oakwood-commons/tbx/internal/table"
)

// SearchState is the global search over the active tab's current view.
// Matches are recomputed whenever the query, mode, or view changes.
type SearchState struct {
	Query          string
	Mode           search.Mode
	CaseSensitive  bool
	FuzzyThreshold float64 // 0 means the search package default
	Matches        []search.Match
	Current        int // index into Matches, cyclic
}

// Recompute refreshes Matches against the given view. A regex compile
// failure is returned for the status line; the previous matches are cleared
// either way so stale highlights never outlive the query that produced them.
func (s *SearchState) Recompute(view *table.Table) error {
	s.Matches = nil
	s.Current = 0
	if s.Query == "" {
		return nil
	}
	matches, err := search.Run(view, s.Query, search.Options{
		Mode:           s.Mode,
		CaseSensitive:  s.CaseSensitive,
		FuzzyThreshold: s.FuzzyThreshold,
	})
	if err != nil {
		return err
	}
	s.Matches = matches
	return nil
}

// Step advances Current by delta, wrapping in both directions, and returns
// the match now selected.
func (s *SearchState) Step(delta int) (search.Match, bool) {
	if len(s.Matches) == 0 {
		return search.Match{}, false
	}
	n := len(s.Matches)
	s.Current = ((s.Current+delta)%n + n) % n
	return s.Matches[s.Current], true
}

// Workspace is the explicitly passed context object the main loop owns.
type Workspace struct {
	tabs    []*Tab
	active  int
	nextID  int
	History *History
	Search  SearchState
}

// New creates an empty workspace.
func New(historySize int) *Workspace {
	return &Workspace{History: NewHistory(historySize)}
}

// AddTab opens a new tab for the given base table and makes it active.
// Duplicate display names get a " (n)" suffix so the tab bar stays readable.
func (w *Workspace) AddTab(name, path string, base *table.Table) *Tab {
	w.nextID++
	t := NewTab(w.nextID, w.uniqueName(name), path, base)
	w.tabs = append(w.tabs, t)
	w.active = len(w.tabs) - 1
	return t
}

func (w *Workspace) uniqueName(name string) string {
	if name == "" {
		name = "table"
	}
	taken := func(n string) bool {
		for _, t := range w.tabs {
			if t.Name == n {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// TabNameForPath derives a display name from a file path.
func TabNameForPath(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// Tabs returns the ordered open tabs.
func (w *Workspace) Tabs() []*Tab { return w.tabs }

// NumTabs returns the number of open tabs.
func (w *Workspace) NumTabs() int { return len(w.tabs) }

// Active returns the active tab, or nil when none remain.
func (w *Workspace) Active() *Tab {
	if len(w.tabs) == 0 {
		return nil
	}
	return w.tabs[w.active]
}

// ActiveIndex returns the index of the active tab.
func (w *Workspace) ActiveIndex() int { return w.active }

// SetActive selects a tab by index. Out-of-range indices are ignored.
func (w *Workspace) SetActive(i int) {
	if i >= 0 && i < len(w.tabs) {
		w.active = i
	}
}

// SwitchTab moves the active pointer by delta, wrapping.
func (w *Workspace) SwitchTab(delta int) {
	if len(w.tabs) == 0 {
		return
	}
	n := len(w.tabs)
	w.active = ((w.active+delta)%n + n) % n
}

// CloseActive closes the active tab, dropping interest in any of its
// in-flight generations. It returns false when the last tab was closed,
// which ends the session.
func (w *Workspace) CloseActive() bool {
	if len(w.tabs) == 0 {
		return false
	}
	w.tabs = append(w.tabs[:w.active], w.tabs[w.active+1:]...)
	if w.active >= len(w.tabs) {
		w.active = len(w.tabs) - 1
	}
	return len(w.tabs) > 0
}

// FindTab resolves a tab by identity, for installing scheduler results
// (the tab may have been closed while its evaluation ran).
func (w *Workspace) FindTab(id int) *Tab {
	for _, t := range w.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// InstallResult routes a scheduler result to its tab and applies the
// generation check. Returns true when the result became the tab's view.
func (w *Workspace) InstallResult(r Result) bool {
	t := w.FindTab(r.TabID)
	if t == nil {
		return false // tab closed while evaluating
	}
	return t.Install(r.Generation, r.View, r.Err)
}
