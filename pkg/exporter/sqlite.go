package exporter

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"github.com/oakwood-commons/tbx/internal/table"
)

// writeSQLite creates a fresh database file holding the view as a single
// table named "t". An existing file at the destination is replaced.
func writeSQLite(view *table.Table, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	schema := view.Schema()
	defs := make([]string, len(schema))
	marks := make([]string, len(schema))
	for i, f := range schema {
		defs[i] = quoteIdent(f.Name) + " " + affinity(f.Type)
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE t (%s)", strings.Join(defs, ", "))
	if _, err := db.Exec(create); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO t VALUES (%s)", strings.Join(marks, ", ")))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	args := make([]any, len(schema))
	for r := 0; r < view.NumRows(); r++ {
		for c := range schema {
			v := view.Cell(r, c)
			switch v.Kind {
			case table.DTypeNull:
				args[c] = nil
			case table.DTypeBool, table.DTypeTime:
				args[c] = v.Format()
			default:
				args[c] = v.Native()
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func affinity(d table.DType) string {
	switch d {
	case table.DTypeInt:
		return "INTEGER"
	case table.DTypeFloat:
		return "REAL"
	case table.DTypeTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
