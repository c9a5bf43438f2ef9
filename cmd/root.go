package cmd

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/tbx/internal/config"
	"github.com/oakwood-commons/tbx/internal/ui"
	"github.com/oakwood-commons/tbx/internal/workspace"
	"github.com/oakwood-commons/tbx/pkg/exporter"
	"github.com/oakwood-commons/tbx/pkg/loader"
	"github.com/oakwood-commons/tbx/pkg/logger"
)

var (
	delimiter  string
	noHeader   bool
	noColor    bool
	themeName  string
	configFile string
	logLevel   string
	logFile    string
	evalScript string
)

var rootCtx = context.Background()

var rootCmd = &cobra.Command{
	Use:   "tbx FILE...",
	Short: "Browse and query tabular data files in the terminal",
	Long: `tbx opens delimited text, JSON lines, spreadsheets, and SQLite
databases in an interactive grid. Rows can be filtered, sorted, and reshaped
with a small command language (':filter', ':order', ':select', ':sql'), and
any view can be exported back out.`,
	Example: "\n  tbx data.csv\n  tbx --delimiter ';' data.csv other.tsv\n" +
		"  tbx db.sqlite\n  tbx --eval 'filter age > 30\\norder name:asc' data.csv\n",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&delimiter, "delimiter", "d", "", "field delimiter for delimited text files (default ',' for .csv, tab for .tsv)")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false, "treat the first row as data and generate column names")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name (default from config; dark or light)")
	rootCmd.Flags().StringVar(&configFile, "config", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write structured logs to this file")
	rootCmd.Flags().StringVar(&evalScript, "eval", "", "run commands non-interactively (newline or ';' separated) and print the resulting view")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	// Flags set on the command line win over the config file.
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "theme":
			cfg.Theme = themeName
		case "log-level":
			cfg.Log.Level = logLevel
		case "log-file":
			cfg.Log.File = logFile
		}
	})

	lgr := logger.Get(cfg.LogLevel(), cfg.Log.File)
	lgr = logger.WithValues(lgr, "files", len(args))
	rootCtx = logger.WithLogger(rootCtx, lgr)

	theme, ok := ui.ThemePresets[cfg.Theme]
	if !ok {
		return fmt.Errorf("unknown theme %q (have: %s)", cfg.Theme, strings.Join(ui.ThemeNames(), ", "))
	}

	opts := loader.Options{NoHeader: noHeader}
	if delimiter != "" {
		d, err := parseDelimiter(delimiter)
		if err != nil {
			return err
		}
		opts.Delimiter = d
	}

	lgr.V(1).Info("loading sources", "paths", args)
	sources, err := loader.LoadAll(rootCtx, args, opts)
	if err != nil {
		return err
	}

	ws := workspace.New(cfg.History.Size)
	ws.Search.FuzzyThreshold = cfg.Search.FuzzyThreshold
	for _, src := range sources {
		ws.AddTab(src.Name, src.Path, src.Table)
	}
	ws.SetActive(0)

	sched := workspace.NewScheduler(0)
	defer sched.Close()
	engine := workspace.NewEngine(ws, sched, exporter.Export)

	if evalScript != "" {
		return runEval(cmd.OutOrStdout(), engine, evalScript, cfg)
	}

	gridCfg := ui.GridConfig{
		MinColWidth: cfg.Grid.MinColWidth,
		MaxColWidth: cfg.Grid.MaxColWidth,
		SampleRows:  cfg.Grid.SampleRows,
	}
	model := ui.NewModel(engine, theme, noColor, gridCfg, opts)
	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// parseDelimiter accepts a single rune or the escapes \t and \0.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return runes[0], nil
}
