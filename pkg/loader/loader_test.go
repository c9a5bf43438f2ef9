package loader

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tbx/internal/table"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadOne(t *testing.T, path string, opts Options) *table.Table {
	t.Helper()
	srcs, err := Load(context.Background(), path, opts)
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	return srcs[0].Table
}

func TestLoadCSV(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "people.csv", "name,age\nJon,35\nMary,28\n"), Options{})
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumCols())
	assert.Equal(t, "name", tbl.Column(0).Name())
	assert.Equal(t, table.DTypeInt, tbl.Column(1).Type())
	assert.Equal(t, "Mary", tbl.Format(1, 0))
}

func TestLoadCSVNoHeader(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "d.csv", "1,a\n2,b\n"), Options{NoHeader: true})
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "column_1", tbl.Column(0).Name())
	assert.Equal(t, "column_2", tbl.Column(1).Name())
	assert.Equal(t, table.DTypeInt, tbl.Column(0).Type())
}

func TestLoadCSVRaggedRowsPadWithNulls(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "r.csv", "a,b,c\n1,2,3\n4,5\n"), Options{})
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 1, tbl.Column(2).NullCount())
	assert.Equal(t, "", tbl.Format(1, 2))
}

func TestLoadCSVStripsBOM(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "b.csv", "\uFEFFid,v\n1,x\n"), Options{})
	assert.Equal(t, "id", tbl.Column(0).Name())
}

func TestLoadCSVDedupesAndFillsHeaderNames(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "h.csv", "id,,id\n1,2,3\n"), Options{})
	assert.Equal(t, "id", tbl.Column(0).Name())
	assert.Equal(t, "column_2", tbl.Column(1).Name())
	assert.Equal(t, "id_2", tbl.Column(2).Name())
}

func TestLoadCSVDelimiterOverride(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "s.csv", "a;b\n1;2\n"), Options{Delimiter: ';'})
	assert.Equal(t, 2, tbl.NumCols())
	assert.Equal(t, "2", tbl.Format(0, 1))
}

func TestLoadTSV(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "t.tsv", "x\ty\n1\thello world\n"), Options{})
	assert.Equal(t, "hello world", tbl.Format(0, 1))
}

func TestLoadFixedWidth(t *testing.T) {
	content := "name    age  city\n" +
		"Jon     35   Oslo\n" +
		"Mary    28   Lima\n" +
		"\n"
	tbl := loadOne(t, writeFile(t, "f.fwf", content), Options{})
	require.Equal(t, 3, tbl.NumCols())
	assert.Equal(t, "city", tbl.Column(2).Name())
	assert.Equal(t, 2, tbl.NumRows(), "trailing blank line dropped")
	assert.Equal(t, table.DTypeInt, tbl.Column(1).Type())
	assert.Equal(t, "Lima", tbl.Format(1, 2))
}

func TestLoadJSONLines(t *testing.T) {
	content := `{"name":"Jon","age":35}` + "\n" +
		`{"age":28,"name":"Mary","city":"Lima"}` + "\n" +
		`{"name":"Ann","age":null}` + "\n"
	tbl := loadOne(t, writeFile(t, "j.jsonl", content), Options{})
	require.Equal(t, 3, tbl.NumCols())
	assert.Equal(t, "name", tbl.Column(0).Name(), "first-seen key order")
	assert.Equal(t, "age", tbl.Column(1).Name())
	assert.Equal(t, "city", tbl.Column(2).Name())
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 2, tbl.Column(2).NullCount(), "missing keys are null")
	assert.Equal(t, 1, tbl.Column(1).NullCount(), "explicit null is null")
	assert.Equal(t, table.DTypeInt, tbl.Column(1).Type())
}

func TestLoadJSONLinesNestedStayText(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "n.jsonl", `{"id":1,"tags":["a","b"]}`+"\n"), Options{})
	assert.Equal(t, `["a","b"]`, tbl.Format(0, 1))
}

func TestLoadJSONLinesMalformed(t *testing.T) {
	path := writeFile(t, "bad.jsonl", `{"ok":1}`+"\n"+`{broken`+"\n")
	_, err := Load(context.Background(), path, Options{})
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrMalformed, lerr.Kind)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadSQLiteDistinguishesEmptyFromNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE notes (id INTEGER, body TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO notes VALUES (1, ''), (2, NULL), (3, 'x')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tbl := loadOne(t, path, Options{})
	body := tbl.Column(1)
	assert.Equal(t, table.DTypeString, body.Type())
	assert.Equal(t, 1, body.NullCount())
	assert.Equal(t, "", tbl.Format(0, 1))
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "x.parquet", "")
	_, err := Load(context.Background(), path, Options{})
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrUnsupportedFormat, lerr.Kind)
	assert.Equal(t, path, lerr.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrIO, lerr.Kind)
}

func TestLoadAllPreservesPathOrder(t *testing.T) {
	a := writeFile(t, "a.csv", "x\n1\n")
	b := writeFile(t, "b.csv", "y\n2\n")
	srcs, err := LoadAll(context.Background(), []string{a, b}, Options{})
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.Equal(t, "a", srcs[0].Name)
	assert.Equal(t, "b", srcs[1].Name)
}

func TestLoadAllFirstErrorWins(t *testing.T) {
	a := writeFile(t, "a.csv", "x\n1\n")
	_, err := LoadAll(context.Background(), []string{a, "missing.csv"}, Options{})
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*Error)))
}

func TestLoadEmptyCSV(t *testing.T) {
	tbl := loadOne(t, writeFile(t, "e.csv", ""), Options{})
	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, 0, tbl.NumCols())
}

func TestColumnStarts(t *testing.T) {
	assert.Equal(t, []int{0, 8, 13}, columnStarts("name    age  city"))
	assert.Equal(t, []int{2}, columnStarts("  x"))
	assert.Nil(t, columnStarts(""))
	assert.Equal(t, []int{0}, columnStarts("a b"), "single spaces do not split")
}

func TestSliceFields(t *testing.T) {
	starts := columnStarts("name    age  city")
	assert.Equal(t, []string{"Jon", "35", "Oslo"}, sliceFields("Jon     35   Oslo", starts))
	assert.Equal(t, []string{"Jon", "", ""}, sliceFields("Jon", starts))
}
