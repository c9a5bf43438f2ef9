package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// StatusModel is the passive status bar. It displays whatever state the root
// model pushes into it each frame.
type StatusModel struct {
	Message     string // transient confirmation or error text
	IsError     bool
	Busy        bool
	Pipeline    string // rendered step chain
	CursorRow   int    // 1-based
	CursorCol   int    // 1-based
	TotalRows   int
	TotalCols   int
	MatchLabel  string // "3/17" while a search is active
	SearchQuery string
	NoColor     bool
	Width       int
}

const busyIndicator = "…working"

// View renders the status bar as a single line.
func (m StatusModel) View(theme Theme) string {
	left := m.Message
	if left == "" {
		left = m.Pipeline
	}

	var parts []string
	if m.Busy {
		parts = append(parts, busyIndicator)
	}
	if m.SearchQuery != "" {
		label := m.SearchQuery
		if m.MatchLabel != "" {
			label += " [" + m.MatchLabel + "]"
		}
		parts = append(parts, "/"+label)
	}
	parts = append(parts, fmt.Sprintf("%d:%d/%dx%d", m.CursorRow, m.CursorCol, m.TotalRows, m.TotalCols))
	right := strings.Join(parts, "  ")

	pad := m.Width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if pad < 1 {
		avail := m.Width - runewidth.StringWidth(right) - 2
		if avail < 0 {
			avail = 0
		}
		left = runewidth.Truncate(left, avail, "…")
		pad = m.Width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
		if pad < 1 {
			pad = 1
		}
	}
	line := left + strings.Repeat(" ", pad) + right

	if m.NoColor {
		return line
	}
	style := lipgloss.NewStyle().Foreground(theme.StatusColor)
	if m.IsError {
		style = lipgloss.NewStyle().Foreground(theme.StatusError).Bold(true)
	}
	return style.Render(line)
}
