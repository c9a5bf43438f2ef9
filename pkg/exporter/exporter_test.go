package exporter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tbx/internal/table"
	"github.com/oakwood-commons/tbx/pkg/loader"
)

func sample(t *testing.T) *table.Table {
	t.Helper()
	name := table.NewBuilder("name")
	age := table.NewBuilder("age")
	active := table.NewBuilder("active")
	for _, row := range [][3]string{
		{"Jon", "35", "true"},
		{"Mary", "28", "false"},
		{"Ann", "", "true"},
	} {
		name.Append(row[0])
		age.Append(row[1])
		active.Append(row[2])
	}
	tbl, err := table.New(name.Finish(), age.Finish(), active.Finish())
	require.NoError(t, err)
	return tbl
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		format string
		ok     bool
	}{
		{"out.csv", "csv", true},
		{"out.TSV", "tsv", true},
		{"out.tab", "tsv", true},
		{"out.json", "json", true},
		{"out.toml", "toml", true},
		{"out.sqlite", "sqlite", true},
		{"out.db", "sqlite", true},
		{"out.parquet", "", false},
		{"plain", "", false},
	}
	for _, tt := range tests {
		format, ok := DetectFormat(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.format, format, tt.path)
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	view := sample(t)
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Export(view, "", path))

	srcs, err := loader.Load(context.Background(), path, loader.Options{})
	require.NoError(t, err)
	got := srcs[0].Table
	assert.True(t, view.Equal(got), "reloaded table matches the exported view")
}

func TestExportTSVRoundTrip(t *testing.T) {
	view := sample(t)
	path := filepath.Join(t.TempDir(), "out.tsv")
	require.NoError(t, Export(view, "tsv", path))

	srcs, err := loader.Load(context.Background(), path, loader.Options{})
	require.NoError(t, err)
	assert.True(t, view.Equal(srcs[0].Table))
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Export(sample(t), "json", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Jon", rows[0]["name"])
	assert.Equal(t, float64(35), rows[0]["age"])
	assert.Equal(t, true, rows[0]["active"])
	val, present := rows[2]["age"]
	assert.True(t, present, "null cells appear as JSON null")
	assert.Nil(t, val)
}

func TestExportTOMLOmitsNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, Export(sample(t), "toml", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[[rows]]")
	assert.Contains(t, content, "Ann")
	assert.Equal(t, 2, strings.Count(content, "age ="), "the null age is omitted")
}

func TestExportSQLiteRoundTrip(t *testing.T) {
	view := sample(t)
	path := filepath.Join(t.TempDir(), "out.sqlite")
	require.NoError(t, Export(view, "sqlite", path))

	srcs, err := loader.Load(context.Background(), path, loader.Options{})
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	got := srcs[0].Table
	require.Equal(t, view.NumRows(), got.NumRows())
	assert.Equal(t, table.DTypeInt, got.Column(1).Type())
	assert.Equal(t, 1, got.Column(1).NullCount())
	assert.Equal(t, "Mary", got.Format(1, 0))
}

func TestExportUnknownFormat(t *testing.T) {
	err := Export(sample(t), "parquet", filepath.Join(t.TempDir(), "o.parquet"))
	var eerr *Error
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "parquet", eerr.Format)
}

func TestExportUndetectableExtension(t *testing.T) {
	err := Export(sample(t), "", filepath.Join(t.TempDir(), "out.dat"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot detect")
}

func TestExportOverwritesExistingSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sqlite")
	require.NoError(t, Export(sample(t), "sqlite", path))
	require.NoError(t, Export(sample(t), "sqlite", path), "re-export replaces the file")
}
