package ui

import (
	"image/color"
	"sort"

	"charm.land/lipgloss/v2"
)

// Theme defines the palette used across the UI.
type Theme struct {
	HeaderFG       color.Color // column header text
	HeaderBG       color.Color // column header background
	CellFG         color.Color // ordinary cell text
	NullFG         color.Color // null cells
	RowNumFG       color.Color // row-number gutter
	SelectedFG     color.Color // cursor row text
	SelectedBG     color.Color // cursor row background
	CursorCellBG   color.Color // cursor cell background (on top of row)
	MatchFG        color.Color // search match text
	MatchBG        color.Color // search match background
	TabActiveFG    color.Color
	TabActiveBG    color.Color
	TabInactiveFG  color.Color
	StatusColor    color.Color // normal status bar text
	StatusError    color.Color // error status bar text
	SeparatorColor color.Color
	PromptFG       color.Color
	HelpKey        color.Color
	HelpValue      color.Color
}

// ThemePresets holds the built-in palettes, selectable by name from the
// config file or the --theme flag.
var ThemePresets = map[string]Theme{
	"dark":  darkTheme(),
	"light": lightTheme(),
}

// ThemeNames returns the preset names in sorted order for error messages.
func ThemeNames() []string {
	names := make([]string, 0, len(ThemePresets))
	for n := range ThemePresets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func darkTheme() Theme {
	return Theme{
		HeaderFG:       lipgloss.Color("81"),
		HeaderBG:       lipgloss.Color("236"),
		CellFG:         lipgloss.Color("252"),
		NullFG:         lipgloss.Color("240"),
		RowNumFG:       lipgloss.Color("243"),
		SelectedFG:     lipgloss.Color("231"),
		SelectedBG:     lipgloss.Color("238"),
		CursorCellBG:   lipgloss.Color("24"),
		MatchFG:        lipgloss.Color("16"),
		MatchBG:        lipgloss.Color("214"),
		TabActiveFG:    lipgloss.Color("81"),
		TabActiveBG:    lipgloss.Color("236"),
		TabInactiveFG:  lipgloss.Color("243"),
		StatusColor:    lipgloss.Color("250"),
		StatusError:    lipgloss.Color("203"),
		SeparatorColor: lipgloss.Color("238"),
		PromptFG:       lipgloss.Color("252"),
		HelpKey:        lipgloss.Color("81"),
		HelpValue:      lipgloss.Color("250"),
	}
}

func lightTheme() Theme {
	return Theme{
		HeaderFG:       lipgloss.Color("25"),
		HeaderBG:       lipgloss.Color("254"),
		CellFG:         lipgloss.Color("235"),
		NullFG:         lipgloss.Color("249"),
		RowNumFG:       lipgloss.Color("247"),
		SelectedFG:     lipgloss.Color("16"),
		SelectedBG:     lipgloss.Color("253"),
		CursorCellBG:   lipgloss.Color("153"),
		MatchFG:        lipgloss.Color("16"),
		MatchBG:        lipgloss.Color("221"),
		TabActiveFG:    lipgloss.Color("25"),
		TabActiveBG:    lipgloss.Color("254"),
		TabInactiveFG:  lipgloss.Color("247"),
		StatusColor:    lipgloss.Color("237"),
		StatusError:    lipgloss.Color("160"),
		SeparatorColor: lipgloss.Color("252"),
		PromptFG:       lipgloss.Color("235"),
		HelpKey:        lipgloss.Color("25"),
		HelpValue:      lipgloss.Color("237"),
	}
}
