package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tbx/internal/search"
	"github.com/oakwood-commons/tbx/internal/table"
	"github.com/oakwood-commons/tbx/internal/workspace"
)

// nullCellText is what a null renders as in the grid. Loaders turn empty
// cells into nulls, so the marker keeps them tellable apart from real empty
// strings.
const nullCellText = "∅"

// GridRenderer paints a laid-out frame. Styling is skipped entirely in
// no-color mode so output stays clean when piped.
type GridRenderer struct {
	Theme   Theme
	NoColor bool
}

type cellPos struct{ row, col int }

// RenderHeader renders the column-name line and the separator under it.
func (g *GridRenderer) RenderHeader(view *table.Table, frame Frame) []string {
	var names strings.Builder
	names.WriteString(strings.Repeat(" ", frame.RowNumWidth+RowNumberGapWidth))
	var sep strings.Builder
	sep.WriteString(strings.Repeat(" ", frame.RowNumWidth+RowNumberGapWidth))
	for i, fc := range frame.Cols {
		if i > 0 {
			names.WriteString(strings.Repeat(" ", ColumnGapWidth))
			sep.WriteString(strings.Repeat(" ", ColumnGapWidth))
		}
		names.WriteString(fitCell(view.Column(fc.Index).Name(), fc.Width))
		sep.WriteString(strings.Repeat("─", fc.Width))
	}
	header := names.String()
	separator := sep.String()
	if !g.NoColor {
		header = lipgloss.NewStyle().
			Foreground(g.Theme.HeaderFG).
			Background(g.Theme.HeaderBG).
			Bold(true).
			Render(header)
		separator = lipgloss.NewStyle().
			Foreground(g.Theme.SeparatorColor).
			Render(separator)
	}
	return []string{header, separator}
}

// RenderBody renders the visible rows. The cursor row, cursor cell, and
// search matches each get their own style; the current match uses the match
// style on top of the cursor cell so stepping through matches stays visible.
func (g *GridRenderer) RenderBody(view *table.Table, frame Frame, cursor workspace.Cursor, matches []search.Match) []string {
	matchAt := make(map[cellPos]bool, len(matches))
	for _, m := range matches {
		matchAt[cellPos{m.Row, m.Col}] = true
	}

	lines := make([]string, 0, frame.RowCount)
	for i := 0; i < frame.RowCount; i++ {
		row := frame.RowTop + i
		var b strings.Builder

		gutter := fmt.Sprintf("%*d", frame.RowNumWidth, row+1)
		if !g.NoColor {
			gutter = lipgloss.NewStyle().Foreground(g.Theme.RowNumFG).Render(gutter)
		}
		b.WriteString(gutter)
		b.WriteString(strings.Repeat(" ", RowNumberGapWidth))

		for ci, fc := range frame.Cols {
			if ci > 0 {
				gap := strings.Repeat(" ", ColumnGapWidth)
				if !g.NoColor && row == cursor.Row {
					gap = lipgloss.NewStyle().Background(g.Theme.SelectedBG).Render(gap)
				}
				b.WriteString(gap)
			}
			b.WriteString(g.renderCell(view, frame, row, fc, cursor, matchAt))
		}
		lines = append(lines, b.String())
	}
	return lines
}

func (g *GridRenderer) renderCell(view *table.Table, frame Frame, row int, fc FrameCol, cursor workspace.Cursor, matchAt map[cellPos]bool) string {
	v := view.Cell(row, fc.Index)
	text := v.Format()
	isNull := v.IsNull()
	if isNull {
		text = nullCellText
	}
	text = fitCell(text, fc.Width)
	if g.NoColor {
		return text
	}

	style := lipgloss.NewStyle().Foreground(g.Theme.CellFG)
	if isNull {
		style = style.Foreground(g.Theme.NullFG)
	}
	switch {
	case matchAt[cellPos{row, fc.Index}]:
		style = style.Foreground(g.Theme.MatchFG).Background(g.Theme.MatchBG)
	case row == cursor.Row && fc.Index == cursor.Col:
		style = style.Foreground(g.Theme.SelectedFG).Background(g.Theme.CursorCellBG).Bold(true)
	case row == cursor.Row:
		style = style.Foreground(g.Theme.SelectedFG).Background(g.Theme.SelectedBG)
	}
	return style.Render(text)
}

// fitCell truncates with an ellipsis or pads to exactly width display cells.
func fitCell(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
