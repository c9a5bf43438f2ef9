package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/tbx/internal/table"
)

// SchemaModel renders the schema overlay: one line per column with its
// dtype and null count, so the inferred types are inspectable without
// leaving the grid.
type SchemaModel struct {
	NoColor bool
}

func (m SchemaModel) View(view *table.Table, theme Theme) string {
	nameW := len("column")
	for _, f := range view.Schema() {
		if len(f.Name) > nameW {
			nameW = len(f.Name)
		}
	}

	keyStyle := lipgloss.NewStyle().Foreground(theme.HelpKey).Bold(true)
	valStyle := lipgloss.NewStyle().Foreground(theme.HelpValue)
	titleStyle := lipgloss.NewStyle().Foreground(theme.HeaderFG).Bold(true)

	var b strings.Builder
	title := fmt.Sprintf("Schema  (%d rows, %d columns)", view.NumRows(), view.NumCols())
	if !m.NoColor {
		title = titleStyle.Render(title)
	}
	b.WriteString(title + "\n\n")
	for c, f := range view.Schema() {
		name := padRight(f.Name, nameW+2)
		rest := fmt.Sprintf("%-8s nulls: %d", f.Type.String(), view.Column(c).NullCount())
		if !m.NoColor {
			name = keyStyle.Render(name)
			rest = valStyle.Render(rest)
		}
		b.WriteString("  " + name + rest + "\n")
	}
	return b.String()
}
