package ui

// NavAction represents an action triggered by a navigation-mode keybinding.
type NavAction string

const (
	NavActionNone        NavAction = ""
	NavActionDown        NavAction = "down"
	NavActionUp          NavAction = "up"
	NavActionLeft        NavAction = "left"
	NavActionRight       NavAction = "right"
	NavActionTop         NavAction = "top"
	NavActionBottom      NavAction = "bottom"
	NavActionFirstCol    NavAction = "first_col"
	NavActionLastCol     NavAction = "last_col"
	NavActionHalfDown    NavAction = "half_down"
	NavActionHalfUp      NavAction = "half_up"
	NavActionPageDown    NavAction = "page_down"
	NavActionPageUp      NavAction = "page_up"
	NavActionCommand     NavAction = "command"
	NavActionSearch      NavAction = "search"
	NavActionNextMatch   NavAction = "next_match"
	NavActionPrevMatch   NavAction = "prev_match"
	NavActionNextTab     NavAction = "next_tab"
	NavActionPrevTab     NavAction = "prev_tab"
	NavActionUndo        NavAction = "undo"
	NavActionHelp        NavAction = "help"
	NavActionSchema      NavAction = "schema"
	NavActionQuit        NavAction = "quit"
	NavActionPendingG    NavAction = "pending_g" // waiting for second key in gg
	NavActionClearSearch NavAction = "clear_search"
)

// NavKeyBindings maps keys to actions in navigation mode, vim style.
var NavKeyBindings = map[string]NavAction{
	"j":      NavActionDown,
	"down":   NavActionDown,
	"k":      NavActionUp,
	"up":     NavActionUp,
	"h":      NavActionLeft,
	"left":   NavActionLeft,
	"l":      NavActionRight,
	"right":  NavActionRight,
	"g":      NavActionPendingG,
	"G":      NavActionBottom,
	"home":   NavActionTop,
	"end":    NavActionBottom,
	"0":      NavActionFirstCol,
	"$":      NavActionLastCol,
	"ctrl+d": NavActionHalfDown,
	"ctrl+u": NavActionHalfUp,
	"pgdown": NavActionPageDown,
	"pgup":   NavActionPageUp,
	":":      NavActionCommand,
	"/":      NavActionSearch,
	"n":      NavActionNextMatch,
	"N":      NavActionPrevMatch,
	"L":      NavActionNextTab,
	"tab":    NavActionNextTab,
	"H":      NavActionPrevTab,
	"u":      NavActionUndo,
	"?":      NavActionHelp,
	"i":      NavActionSchema,
	"q":      NavActionQuit,
	"esc":    NavActionClearSearch,
}

// LookupNavAction resolves a key string, handling the two-key gg sequence.
func LookupNavAction(key string, pendingG bool) NavAction {
	if pendingG {
		if key == "g" {
			return NavActionTop
		}
		return NavActionNone
	}
	return NavKeyBindings[key]
}
