// Package loader reads tabular data files into typed tables. It
// auto-detects the format from the file extension and infers column types
// from cell text, so the rest of the application only ever sees a schema of
// concrete dtypes regardless of how loosely typed the source format is.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/tbx/internal/table"
)

// ErrorKind classifies load failures for status-line display.
type ErrorKind int

const (
	ErrUnsupportedFormat ErrorKind = iota
	ErrIO
	ErrMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedFormat:
		return "unsupported format"
	case ErrIO:
		return "io error"
	case ErrMalformed:
		return "malformed input"
	default:
		return "load error"
	}
}

// Error wraps a failure to load one path.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func loadErr(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// Options tune parsing of delimited text formats. The zero value means
// "comma for .csv, tab for .tsv, first row is the header".
type Options struct {
	Delimiter rune // overrides the extension's default delimiter when non-zero
	NoHeader  bool // first row is data; column names are generated
}

// Source is one loaded table. Single-table formats yield exactly one Source
// per file; a SQLite database yields one per user table and a workbook one
// per non-empty sheet.
type Source struct {
	Name  string
	Path  string
	Table *table.Table
}

// Load reads one file and returns its tables.
func Load(ctx context.Context, path string, opts Options) ([]Source, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		t, err := loadDelimited(path, delimiterOr(opts, ','), opts.NoHeader)
		return one(path, t, err)
	case ".tsv", ".tab":
		t, err := loadDelimited(path, delimiterOr(opts, '\t'), opts.NoHeader)
		return one(path, t, err)
	case ".fwf":
		t, err := loadFixedWidth(path, opts.NoHeader)
		return one(path, t, err)
	case ".jsonl", ".ndjson":
		t, err := loadJSONLines(path)
		return one(path, t, err)
	case ".xlsx":
		return loadWorkbook(path, opts.NoHeader)
	case ".sqlite", ".sqlite3", ".db":
		return loadDatabase(ctx, path)
	default:
		return nil, loadErr(ErrUnsupportedFormat, path, fmt.Errorf("extension %q", ext))
	}
}

// LoadAll loads several files concurrently. The returned sources keep the
// order of paths; the first failure cancels the remaining loads.
func LoadAll(ctx context.Context, paths []string, opts Options) ([]Source, error) {
	perPath := make([][]Source, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			srcs, err := Load(gctx, p, opts)
			if err != nil {
				return err
			}
			perPath[i] = srcs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []Source
	for _, srcs := range perPath {
		out = append(out, srcs...)
	}
	return out, nil
}

func one(path string, t *table.Table, err error) ([]Source, error) {
	if err != nil {
		return nil, err
	}
	return []Source{{Name: baseName(path), Path: path, Table: t}}, nil
}

func delimiterOr(opts Options, fallback rune) rune {
	if opts.Delimiter != 0 {
		return opts.Delimiter
	}
	return fallback
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fromRecords assembles a table from rows of cell text. Rows shorter than
// the widest row are padded with nulls, longer header rows keep their extra
// generated names.
func fromRecords(path string, records [][]string, noHeader bool) (*table.Table, error) {
	if len(records) == 0 {
		return table.Empty(), nil
	}
	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	var names []string
	body := records
	if noHeader {
		for i := 0; i < width; i++ {
			names = append(names, fmt.Sprintf("column_%d", i+1))
		}
	} else {
		names = make([]string, width)
		for i := range names {
			if i < len(records[0]) {
				names[i] = strings.TrimSpace(records[0][i])
			}
			if names[i] == "" {
				names[i] = fmt.Sprintf("column_%d", i+1)
			}
		}
		body = records[1:]
	}
	names = dedupeNames(names)

	builders := make([]*table.Builder, width)
	for i := range builders {
		builders[i] = table.NewBuilder(names[i])
	}
	for _, rec := range body {
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(rec) {
				cell = rec[i]
			}
			builders[i].Append(cell)
		}
	}
	cols := make([]*table.Column, width)
	for i, b := range builders {
		cols[i] = b.Finish()
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, loadErr(ErrMalformed, path, err)
	}
	return t, nil
}

// dedupeNames suffixes repeated column names so the table index stays
// unambiguous ("id", "id_2", "id_3").
func dedupeNames(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		seen[n]++
		if seen[n] == 1 {
			out[i] = n
			continue
		}
		for {
			candidate := fmt.Sprintf("%s_%d", n, seen[n])
			if _, taken := seen[candidate]; !taken {
				seen[candidate] = 1
				out[i] = candidate
				break
			}
			seen[n]++
		}
	}
	return out
}
