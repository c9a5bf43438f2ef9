package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/oakwood-commons/tbx/internal/command"
	"github.com/oakwood-commons/tbx/internal/config"
	"github.com/oakwood-commons/tbx/internal/query"
	"github.com/oakwood-commons/tbx/internal/ui"
	"github.com/oakwood-commons/tbx/internal/workspace"
)

// runEval executes a command script against the workspace without a
// terminal. Pipeline edits run synchronously; the final view prints as a
// plain grid sized to the real terminal when there is one.
func runEval(out io.Writer, engine *workspace.Engine, script string, cfg config.Config) error {
	for _, line := range splitScript(script) {
		cmd, err := command.Parse(line)
		if err != nil {
			return err
		}
		if err := evalOne(engine, cmd); err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
	}
	return printView(out, engine.Workspace.Active(), cfg)
}

// splitScript breaks a script into commands. Newlines always separate.
// Within a line a bare ';' separates too, except inside single or double
// quotes, and except on sql lines, which keep the whole line: SQL text may
// legitimately contain semicolons, so sql must stand on its own line.
func splitScript(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "sql" || strings.HasPrefix(trimmed, "sql ") {
			lines = append(lines, trimmed)
			continue
		}
		for _, part := range splitUnquoted(trimmed, ';') {
			if s := strings.TrimSpace(part); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return lines
}

func splitUnquoted(s string, sep rune) []string {
	var parts []string
	var quote rune
	start := 0
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != 0:
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == sep:
			parts = append(parts, s[start:i])
			start = i + len(string(sep))
		}
	}
	return append(parts, s[start:])
}

// evalOne mirrors Engine.Dispatch for the command subset that makes sense
// without a screen, evaluating pipeline changes in place instead of through
// the scheduler.
func evalOne(engine *workspace.Engine, cmd command.Command) error {
	t := engine.Workspace.Active()
	if t == nil {
		return fmt.Errorf("no open tab")
	}

	switch c := cmd.(type) {
	case command.PipelineEdit:
		t.Pipeline().Push(c.Step)
		if err := reapply(t); err != nil {
			t.Pipeline().Undo()
			return err
		}
		return nil
	case command.Undo:
		if t.Pipeline().Undo() {
			return reapply(t)
		}
		return nil
	case command.Reset:
		t.Pipeline().Reset()
		return reapply(t)
	case command.TabSwitch:
		engine.Workspace.SwitchTab(c.Delta)
		return nil
	case command.Export:
		_, err := engine.Dispatch(c)
		return err
	case command.Quit:
		return nil
	default:
		return fmt.Errorf("command not supported with --eval")
	}
}

func reapply(t *workspace.Tab) error {
	view, err := query.Apply(t.Base(), t.Pipeline().Steps())
	if err != nil {
		return err
	}
	gen := t.NextGeneration()
	t.Install(gen, view, nil)
	return nil
}

// printView renders the whole view as an uncolored grid. Terminal width is
// honored when stdout is a terminal; otherwise the grid is wide enough for
// every column.
func printView(out io.Writer, t *workspace.Tab, cfg config.Config) error {
	if t == nil {
		return fmt.Errorf("no open tab")
	}
	view := t.View()

	width := 1 << 20
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	gridCfg := ui.GridConfig{
		MinColWidth: cfg.Grid.MinColWidth,
		MaxColWidth: cfg.Grid.MaxColWidth,
		SampleRows:  view.NumRows(),
	}
	lm := ui.NewLayoutManager(width, view.NumRows()+16, gridCfg)
	frame, _ := lm.Layout(view, workspace.Cursor{}, workspace.Scroll{})
	renderer := ui.GridRenderer{NoColor: true}

	for _, line := range renderer.RenderHeader(view, frame) {
		if _, err := fmt.Fprintln(out, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	for _, line := range renderer.RenderBody(view, frame, workspace.Cursor{Row: -1, Col: -1}, nil) {
		if _, err := fmt.Fprintln(out, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
