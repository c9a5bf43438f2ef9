// Package command tokenizes and parses the textual commands entered on the
// ':' line and turns them into typed values the workspace and UI dispatch on.
// Parsing never touches application state; a ParseError leaves everything
// untouched.
package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/oakwood-commons/tbx/internal/query"
	"github.com/oakwood-commons/tbx/internal/search"
)

// ParseErrorKind classifies malformed command text.
type ParseErrorKind int

const (
	// ErrUnterminatedQuote means a quote was opened and never closed.
	ErrUnterminatedQuote ParseErrorKind = iota
	// ErrTrailingEscape means the line ended mid-escape.
	ErrTrailingEscape
	// ErrUnknownCommand means the verb is not recognized.
	ErrUnknownCommand
	// ErrBadArguments means the verb got the wrong arguments.
	ErrBadArguments
)

// ParseError is a rejected command line.
type ParseError struct {
	Kind        ParseErrorKind
	Input       string
	Verb        string
	Detail      string
	Suggestions []string // nearest known verbs for ErrUnknownCommand
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrUnterminatedQuote:
		return "unterminated quote"
	case ErrTrailingEscape:
		return "trailing escape"
	case ErrUnknownCommand:
		if len(e.Suggestions) > 0 {
			return fmt.Sprintf("unknown command %q (did you mean %s?)", e.Verb, strings.Join(e.Suggestions, ", "))
		}
		return fmt.Sprintf("unknown command %q", e.Verb)
	case ErrBadArguments:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s", e.Verb, e.Detail)
		}
		return fmt.Sprintf("%s: bad arguments", e.Verb)
	default:
		return "parse error"
	}
}

// Command is the closed set of parsed commands. Pipeline-editing commands
// carry a query.Step; everything else mutates render or workspace state
// synchronously.
type Command interface{ isCommand() }

// PipelineEdit appends a step to the active tab's pipeline.
type PipelineEdit struct{ Step query.Step }

// Undo removes the active tab's last pipeline step.
type Undo struct{}

// Reset clears the active tab's pipeline.
type Reset struct{}

// Find starts a search over the active tab's view.
type Find struct {
	Query         string
	Mode          search.Mode
	CaseSensitive bool
}

// FindStep moves to the next (+1) or previous (-1) match cyclically.
type FindStep struct{ Delta int }

// Goto moves the cursor. Row is 1-based; Percent jumps proportionally when
// Row < 0. Col is optional (1-based; 0 means keep).
type Goto struct {
	Row     int
	Col     int
	Percent float64
}

// TabNew opens a file in a new tab.
type TabNew struct{ Path string }

// TabClose closes the active tab.
type TabClose struct{}

// TabSwitch activates the adjacent tab (+1 next, -1 previous).
type TabSwitch struct{ Delta int }

// Export writes the active view to a file.
type Export struct {
	Path   string
	Format string // empty means derive from extension
}

// Quit ends the session.
type Quit struct{}

// Help toggles the help overlay.
type Help struct{}

// Schema toggles the schema overlay.
type Schema struct{}

func (PipelineEdit) isCommand() {}
func (Undo) isCommand()         {}
func (Reset) isCommand()        {}
func (Find) isCommand()         {}
func (FindStep) isCommand()     {}
func (Goto) isCommand()         {}
func (TabNew) isCommand()       {}
func (TabClose) isCommand()     {}
func (TabSwitch) isCommand()    {}
func (Export) isCommand()       {}
func (Quit) isCommand()         {}
func (Help) isCommand()         {}
func (Schema) isCommand()       {}

// Verbs lists every recognized verb, for help text and suggestion ranking.
var Verbs = []string{
	"filter", "select", "order", "sql", "undo", "reset",
	"find", "rfind", "zfind", "find-next", "find-prev", "goto",
	"tabnew", "tabclose", "tabnext", "tabprev",
	"export", "schema", "help", "quit",
}

// Parse turns one command line into a Command. The first token is the verb;
// verbs that take a free-form expression (filter, sql) consume the rest of
// the raw line verbatim so quoting inside expressions survives.
func Parse(line string) (Command, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &ParseError{Kind: ErrBadArguments, Detail: "empty command", Input: line}
	}
	verb := tokens[0]
	args := tokens[1:]

	switch verb {
	case "filter":
		expr := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), verb))
		if expr == "" {
			return nil, badArgs(verb, "usage: filter <expr>")
		}
		return PipelineEdit{Step: query.FilterStep{Expr: expr}}, nil

	case "select":
		if len(args) == 0 {
			return nil, badArgs(verb, "usage: select <col>[,<col>...]")
		}
		cols := splitList(args)
		if len(cols) == 0 {
			return nil, badArgs(verb, "no columns named")
		}
		return PipelineEdit{Step: query.SelectStep{Columns: cols}}, nil

	case "order", "sort":
		if len(args) == 0 {
			return nil, badArgs(verb, "usage: order <col>[:asc|desc][,...]")
		}
		keys, err := parseSortKeys(splitList(args))
		if err != nil {
			return nil, err
		}
		return PipelineEdit{Step: query.SortStep{Keys: keys}}, nil

	case "sql":
		stmt := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), verb))
		if stmt == "" {
			return nil, badArgs(verb, "usage: sql <statement>")
		}
		return PipelineEdit{Step: query.RawStep{Statement: stmt}}, nil

	case "undo":
		return Undo{}, nil
	case "reset":
		return Reset{}, nil

	case "find", "rfind", "zfind":
		if len(args) == 0 {
			return nil, badArgs(verb, "usage: "+verb+" <text>")
		}
		mode := search.ModeLiteral
		switch verb {
		case "rfind":
			mode = search.ModeRegex
		case "zfind":
			mode = search.ModeFuzzy
		}
		return Find{Query: strings.Join(args, " "), Mode: mode}, nil

	case "find-next", "fnext":
		return FindStep{Delta: 1}, nil
	case "find-prev", "fprev":
		return FindStep{Delta: -1}, nil

	case "goto":
		if len(args) == 0 || len(args) > 2 {
			return nil, badArgs(verb, "usage: goto <row>[%] [col]")
		}
		g := Goto{}
		if pct, ok := strings.CutSuffix(args[0], "%"); ok {
			p, err := strconv.ParseFloat(pct, 64)
			if err != nil || p < 0 || p > 100 {
				return nil, badArgs(verb, "bad percent "+args[0])
			}
			g.Row = -1
			g.Percent = p
		} else {
			row, err := strconv.Atoi(args[0])
			if err != nil || row < 1 {
				return nil, badArgs(verb, "bad row "+args[0])
			}
			g.Row = row
		}
		if len(args) == 2 {
			col, err := strconv.Atoi(args[1])
			if err != nil || col < 1 {
				return nil, badArgs(verb, "bad column "+args[1])
			}
			g.Col = col
		}
		return g, nil

	case "tabnew", "open":
		if len(args) != 1 {
			return nil, badArgs(verb, "usage: "+verb+" <path>")
		}
		return TabNew{Path: args[0]}, nil
	case "tabclose":
		return TabClose{}, nil
	case "tabnext":
		return TabSwitch{Delta: 1}, nil
	case "tabprev":
		return TabSwitch{Delta: -1}, nil

	case "export", "save":
		if len(args) == 0 || len(args) > 2 {
			return nil, badArgs(verb, "usage: "+verb+" <path> [format]")
		}
		e := Export{Path: args[0]}
		if len(args) == 2 {
			e.Format = strings.ToLower(args[1])
		}
		return e, nil

	case "schema":
		return Schema{}, nil
	case "help":
		return Help{}, nil
	case "quit", "q":
		return Quit{}, nil

	default:
		return nil, &ParseError{
			Kind:        ErrUnknownCommand,
			Input:       line,
			Verb:        verb,
			Suggestions: SuggestVerbs(verb, 3),
		}
	}
}

func badArgs(verb, detail string) *ParseError {
	return &ParseError{Kind: ErrBadArguments, Verb: verb, Detail: detail}
}

// splitList flattens "a,b c,d" style argument lists into trimmed names.
func splitList(args []string) []string {
	var out []string
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseSortKeys(parts []string) ([]query.SortKey, error) {
	keys := make([]query.SortKey, 0, len(parts))
	for _, p := range parts {
		name, dir, hasDir := strings.Cut(p, ":")
		key := query.SortKey{Column: name}
		if hasDir {
			switch strings.ToLower(dir) {
			case "asc":
			case "desc":
				key.Descending = true
			default:
				return nil, badArgs("order", "bad direction "+dir)
			}
		}
		if key.Column == "" {
			return nil, badArgs("order", "empty column name")
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// SuggestVerbs ranks known verbs by similarity to the unknown input using
// the same subsequence scorer the fuzzy search mode uses.
func SuggestVerbs(input string, max int) []string {
	type scored struct {
		verb  string
		score float64
	}
	var candidates []scored
	for _, v := range Verbs {
		s := search.Similarity(input, v, false)
		if rev := search.Similarity(v, input, false); rev > s {
			s = rev
		}
		if s > 0 {
			candidates = append(candidates, scored{verb: v, score: s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].verb < candidates[j].verb
	})
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.verb
	}
	return out
}
