package loader

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"github.com/oakwood-commons/tbx/internal/table"
)

// loadDatabase opens a SQLite file and loads every user table, one source
// per table in name order.
func loadDatabase(ctx context.Context, path string) ([]Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, loadErr(ErrIO, path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, loadErr(ErrIO, path, err)
	}
	defer db.Close()

	names, err := userTables(ctx, db)
	if err != nil {
		return nil, loadErr(ErrMalformed, path, err)
	}
	if len(names) == 0 {
		return nil, loadErr(ErrMalformed, path, fmt.Errorf("database has no tables"))
	}

	out := make([]Source, 0, len(names))
	for _, name := range names {
		t, err := dumpTable(ctx, db, name)
		if err != nil {
			return nil, loadErr(ErrMalformed, path, fmt.Errorf("table %q: %w", name, err))
		}
		out = append(out, Source{Name: name, Path: path, Table: t})
	}
	return out, nil
}

func userTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// dumpTable reads a full table and re-types it through the text inference
// the other loaders use, so a SQLite TEXT column holding dates still comes
// out as a time column.
func dumpTable(ctx context.Context, db *sql.DB, name string) (*table.Table, error) {
	quoted := `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	builders := make([]*table.Builder, len(colNames))
	for i, n := range colNames {
		builders[i] = table.NewBuilder(n)
	}
	scan := make([]any, len(colNames))
	ptrs := make([]any, len(colNames))
	for i := range scan {
		ptrs[i] = &scan[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range scan {
			if v == nil {
				builders[i].AppendNull()
			} else {
				builders[i].AppendText(cellText(v))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	cols := make([]*table.Column, len(builders))
	for i, b := range builders {
		cols[i] = b.Finish()
	}
	return table.New(cols...)
}

func cellText(v any) string {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
