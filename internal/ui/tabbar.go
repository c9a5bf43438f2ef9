package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tbx/internal/workspace"
)

// TabBarModel renders the open tabs across the top, the active one styled.
type TabBarModel struct {
	NoColor bool
	Width   int
}

func (m TabBarModel) View(ws *workspace.Workspace, theme Theme) string {
	var b strings.Builder
	used := 0
	for i, t := range ws.Tabs() {
		label := " " + t.Name + " "
		if t.Busy() {
			label = " " + t.Name + "* "
		}
		w := runewidth.StringWidth(label)
		if used+w > m.Width && i > 0 {
			break
		}
		used += w
		if m.NoColor {
			if i == ws.ActiveIndex() {
				b.WriteString("[" + strings.TrimSpace(label) + "]")
			} else {
				b.WriteString(label)
			}
			continue
		}
		style := lipgloss.NewStyle().Foreground(theme.TabInactiveFG)
		if i == ws.ActiveIndex() {
			style = lipgloss.NewStyle().
				Foreground(theme.TabActiveFG).
				Background(theme.TabActiveBG).
				Bold(true)
		}
		b.WriteString(style.Render(label))
	}
	return b.String()
}
