package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// helpEntry is one key/description pair in the help overlay.
type helpEntry struct {
	key  string
	desc string
}

var helpSections = []struct {
	title   string
	entries []helpEntry
}{
	{"Navigation", []helpEntry{
		{"j / k", "move down / up"},
		{"h / l", "move left / right"},
		{"gg / G", "first / last row"},
		{"0 / $", "first / last column"},
		{"ctrl+d / ctrl+u", "half page down / up"},
		{"pgdn / pgup", "page down / up"},
	}},
	{"Tabs", []helpEntry{
		{"L or tab / H", "next / previous tab"},
		{":tabnew FILE", "open a file in a new tab"},
		{":tabclose", "close the active tab"},
	}},
	{"Query", []helpEntry{
		{":filter EXPR", "keep rows where EXPR is true"},
		{":select a,b", "keep and reorder columns"},
		{":order col:desc", "sort by columns"},
		{":sql STMT", "run SQL against the view as \"t\""},
		{"u / :undo", "remove the last step"},
		{":reset", "back to the loaded file"},
	}},
	{"Search", []helpEntry{
		{"/text", "literal search"},
		{":rfind RE", "regex search"},
		{":zfind TEXT", "fuzzy search"},
		{"n / N", "next / previous match"},
		{"esc", "clear search"},
	}},
	{"Other", []helpEntry{
		{":goto N | N%", "jump to row"},
		{":export FILE", "write the view to a file"},
		{"i", "schema overlay"},
		{"?", "this help"},
		{"q", "quit"},
	}},
}

// HelpModel renders the key reference overlay.
type HelpModel struct {
	NoColor bool
}

func (m HelpModel) View(theme Theme, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.HelpKey).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.HelpValue)
	titleStyle := lipgloss.NewStyle().Foreground(theme.HeaderFG).Bold(true)

	var b strings.Builder
	for si, section := range helpSections {
		if si > 0 {
			b.WriteString("\n")
		}
		title := section.title
		if !m.NoColor {
			title = titleStyle.Render(title)
		}
		b.WriteString(title + "\n")
		for _, e := range section.entries {
			key := padRight(e.key, 18)
			desc := e.desc
			if !m.NoColor {
				key = keyStyle.Render(key)
				desc = descStyle.Render(desc)
			}
			b.WriteString("  " + key + desc + "\n")
		}
	}
	return b.String()
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s + " "
	}
	return s + strings.Repeat(" ", w-len(s))
}
