package ui

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/tbx/internal/workspace"
)

// PromptKind says which line editor is open.
type PromptKind int

const (
	PromptCommand PromptKind = iota // ':' command line
	PromptSearch                    // '/' incremental search line
)

// PromptModel wraps a textinput as the command/search line. Up and down
// recall history entries whose prefix matches what has been typed so far,
// preserving the in-progress line as the draft.
type PromptModel struct {
	input   textinput.Model
	kind    PromptKind
	history *workspace.History

	recall  []string // history lines matching the draft prefix, newest first
	recqPos int      // -1 means the live draft is showing
	draft   string
}

// PromptOutcome is what one key did to the prompt.
type PromptOutcome struct {
	Submitted bool
	Canceled  bool
	Line      string
	Changed   bool // value changed this update (drives incremental search)
}

// NewPromptModel creates the line editor backed by the given history.
func NewPromptModel(history *workspace.History) PromptModel {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.CharLimit = 500
	ti.SetWidth(80)
	ti.Prompt = ""
	return PromptModel{input: ti, history: history, recqPos: -1}
}

// Open focuses the prompt for a fresh line.
func (m *PromptModel) Open(kind PromptKind, width int) tea.Cmd {
	m.kind = kind
	m.input.SetValue("")
	m.input.SetWidth(width - 2)
	m.recqPos = -1
	m.draft = ""
	return m.input.Focus()
}

// Close blurs and clears the prompt.
func (m *PromptModel) Close() {
	m.input.Blur()
	m.input.SetValue("")
	m.recqPos = -1
}

// Kind reports which prompt is open.
func (m *PromptModel) Kind() PromptKind { return m.kind }

// Value returns the current line.
func (m *PromptModel) Value() string { return m.input.Value() }

// SetWidth resizes the editor.
func (m *PromptModel) SetWidth(width int) {
	m.input.SetWidth(width - 2)
}

// Update feeds one key to the editor.
func (m *PromptModel) Update(msg tea.KeyMsg) (PromptOutcome, tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := m.input.Value()
		m.Close()
		return PromptOutcome{Submitted: true, Line: line}, nil
	case "esc", "ctrl+c":
		m.Close()
		return PromptOutcome{Canceled: true}, nil
	case "up":
		m.recallStep(1)
		return PromptOutcome{Changed: true}, nil
	case "down":
		m.recallStep(-1)
		return PromptOutcome{Changed: true}, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	after := m.input.Value()
	if after != before {
		// Typing restarts recall from the new draft.
		m.recqPos = -1
		m.draft = after
	}
	return PromptOutcome{Changed: after != before}, cmd
}

// recallStep moves through matching history. delta +1 goes to older entries,
// -1 back toward the draft.
func (m *PromptModel) recallStep(delta int) {
	if m.history == nil {
		return
	}
	if m.recqPos == -1 {
		m.draft = m.input.Value()
		m.recall = m.history.WithPrefix(m.draft)
	}
	next := m.recqPos + delta
	switch {
	case next < -1:
		return
	case next == -1:
		m.recqPos = -1
		m.input.SetValue(m.draft)
	case next < len(m.recall):
		m.recqPos = next
		m.input.SetValue(m.recall[next])
	}
	m.input.CursorEnd()
}

// View renders the prompt with its sigil.
func (m *PromptModel) View() string {
	sigil := ":"
	if m.kind == PromptSearch {
		sigil = "/"
	}
	return sigil + m.input.View()
}
