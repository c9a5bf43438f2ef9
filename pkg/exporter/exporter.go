// Package exporter serializes a view table to a file. The formats mirror the
// loader's so a written file reads back with the same values.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/tbx/internal/table"
)

// Error wraps a failure to export to one destination.
type Error struct {
	Format string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s as %s: %v", e.Path, e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Formats lists the supported export formats.
var Formats = []string{"csv", "tsv", "json", "toml", "sqlite"}

// DetectFormat maps a destination path's extension to a format name.
func DetectFormat(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", true
	case ".tsv", ".tab":
		return "tsv", true
	case ".json":
		return "json", true
	case ".toml":
		return "toml", true
	case ".sqlite", ".sqlite3", ".db":
		return "sqlite", true
	default:
		return "", false
	}
}

// Export writes the view to path in the given format. An empty format is
// detected from the path's extension.
func Export(view *table.Table, format, path string) error {
	if format == "" {
		detected, ok := DetectFormat(path)
		if !ok {
			return &Error{Format: format, Path: path,
				Err: fmt.Errorf("cannot detect format from extension")}
		}
		format = detected
	}
	var err error
	switch format {
	case "csv":
		err = writeDelimited(view, path, ',')
	case "tsv":
		err = writeDelimited(view, path, '\t')
	case "json":
		err = writeJSON(view, path)
	case "toml":
		err = writeTOML(view, path)
	case "sqlite":
		err = writeSQLite(view, path)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return &Error{Format: format, Path: path, Err: err}
	}
	return nil
}

func writeDelimited(view *table.Table, path string, delim rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delim
	header := make([]string, view.NumCols())
	for i, field := range view.Schema() {
		header[i] = field.Name
	}
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, view.NumCols())
	for r := 0; r < view.NumRows(); r++ {
		for c := range record {
			record[c] = view.Format(r, c)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// writeJSON emits an array of objects, one per row. Nulls stay JSON null;
// times use their display form.
func writeJSON(view *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return writeEncoded(view, f, true, func(rows []map[string]any) error {
		return enc.Encode(rows)
	})
}

// writeTOML wraps the rows in a single "rows" array-of-tables, since TOML
// has no top-level arrays.
func writeTOML(view *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeEncoded(view, f, false, func(rows []map[string]any) error {
		doc := struct {
			Rows []map[string]any `toml:"rows"`
		}{Rows: rows}
		return toml.NewEncoder(f).Encode(doc)
	})
}

// writeEncoded materializes rows as maps and hands them to the codec.
// TOML has no null, so nullable cells are omitted there instead.
func writeEncoded(view *table.Table, f *os.File, includeNulls bool, encode func([]map[string]any) error) error {
	schema := view.Schema()
	rows := make([]map[string]any, view.NumRows())
	for r := range rows {
		obj := make(map[string]any, len(schema))
		for c, field := range schema {
			v := view.Cell(r, c)
			switch v.Kind {
			case table.DTypeNull:
				if includeNulls {
					obj[field.Name] = nil
				}
			case table.DTypeTime:
				obj[field.Name] = v.Format()
			default:
				obj[field.Name] = v.Native()
			}
		}
		rows[r] = obj
	}
	if err := encode(rows); err != nil {
		return err
	}
	return f.Close()
}
