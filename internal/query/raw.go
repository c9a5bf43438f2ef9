package query

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"github.com/oakwood-commons/tbx/internal/table"
)

// Raw steps hand the statement to an in-memory SQLite database. The step's
// input table is materialized as the relation "t", the statement runs against
// it, and the result set is rebuilt into a typed table, so the output schema
// can differ entirely from the input (aggregation, joins against t itself,
// computed columns).

func sqliteAffinity(d table.DType) string {
	switch d {
	case table.DTypeInt:
		return "INTEGER"
	case table.DTypeFloat:
		return "REAL"
	case table.DTypeBool, table.DTypeString, table.DTypeNull:
		return "TEXT"
	case table.DTypeTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var noSuchColumnRe = regexp.MustCompile(`no such column:? "?([A-Za-z0-9_.]+)"?`)

func (s RawStep) apply(in *table.Table) (*table.Table, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, &Error{Kind: ErrUnsupportedOperation, Detail: "open sqlite", Err: err}
	}
	defer db.Close()

	if err := loadRelation(db, "t", in); err != nil {
		return nil, err
	}

	rows, err := db.Query(s.Statement)
	if err != nil {
		if m := noSuchColumnRe.FindStringSubmatch(err.Error()); m != nil {
			name := m[1]
			if i := strings.LastIndexByte(name, '.'); i >= 0 {
				name = name[i+1:]
			}
			return nil, unknownColumn(name)
		}
		return nil, &Error{Kind: ErrBadExpression, Detail: s.Statement, Err: err}
	}
	defer rows.Close()

	return tableFromRows(rows)
}

func loadRelation(db *sql.DB, name string, in *table.Table) error {
	schema := in.Schema()
	defs := make([]string, len(schema))
	marks := make([]string, len(schema))
	for i, f := range schema {
		defs[i] = quoteIdent(f.Name) + " " + sqliteAffinity(f.Type)
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := db.Exec(create); err != nil {
		return &Error{Kind: ErrUnsupportedOperation, Detail: "create relation", Err: err}
	}

	tx, err := db.Begin()
	if err != nil {
		return &Error{Kind: ErrUnsupportedOperation, Detail: "begin insert", Err: err}
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		quoteIdent(name), strings.Join(marks, ", ")))
	if err != nil {
		_ = tx.Rollback()
		return &Error{Kind: ErrUnsupportedOperation, Detail: "prepare insert", Err: err}
	}
	args := make([]any, len(schema))
	for r := 0; r < in.NumRows(); r++ {
		for c := range schema {
			v := in.Cell(r, c)
			switch v.Kind {
			case table.DTypeNull:
				args[c] = nil
			case table.DTypeBool, table.DTypeTime:
				// Keep the display form so the result set reconstructs the
				// same way the loaders type raw text.
				args[c] = v.Format()
			default:
				args[c] = v.Native()
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return &Error{Kind: ErrUnsupportedOperation, Detail: "insert row", Err: err}
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return &Error{Kind: ErrUnsupportedOperation, Detail: "insert", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &Error{Kind: ErrUnsupportedOperation, Detail: "commit insert", Err: err}
	}
	return nil
}

// tableFromRows reads a full result set and re-infers column types from the
// cell text, the same inference the loaders apply.
func tableFromRows(rows *sql.Rows) (*table.Table, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, &Error{Kind: ErrUnsupportedOperation, Detail: "result columns", Err: err}
	}
	builders := make([]*table.Builder, len(names))
	for i, n := range names {
		builders[i] = table.NewBuilder(n)
	}
	scan := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range scan {
		ptrs[i] = &scan[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &Error{Kind: ErrUnsupportedOperation, Detail: "scan row", Err: err}
		}
		for i, v := range scan {
			if v == nil {
				builders[i].AppendNull()
			} else {
				builders[i].AppendText(sqlCellText(v))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Kind: ErrUnsupportedOperation, Detail: "read rows", Err: err}
	}
	cols := make([]*table.Column, len(builders))
	for i, b := range builders {
		cols[i] = b.Finish()
	}
	out, err := table.New(cols...)
	if err != nil {
		return nil, &Error{Kind: ErrUnsupportedOperation, Detail: "assemble result", Err: err}
	}
	return out, nil
}

func sqlCellText(v any) string {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
