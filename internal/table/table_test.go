package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildColumn(t *testing.T, name string, cells ...string) *Column {
	t.Helper()
	b := NewBuilder(name)
	for _, c := range cells {
		b.Append(c)
	}
	return b.Finish()
}

func TestBuilderInference(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  DType
	}{
		{"ints", []string{"1", "42", "-7"}, DTypeInt},
		{"ints with nulls", []string{"1", "", "3"}, DTypeInt},
		{"floats", []string{"1.5", "2", "-0.25"}, DTypeFloat},
		{"bools", []string{"true", "f", "YES", "no"}, DTypeBool},
		{"dates", []string{"2024-01-15", "1999-12-31"}, DTypeTime},
		{"datetimes", []string{"2024-01-15 10:30:00"}, DTypeTime},
		{"mixed falls back to string", []string{"1", "x"}, DTypeString},
		{"all empty stays null", []string{"", "", ""}, DTypeNull},
		{"text", []string{"alice", "bob"}, DTypeString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := buildColumn(t, "c", tt.cells...)
			assert.Equal(t, tt.want, col.Type())
		})
	}
}

func TestBuilderNullCount(t *testing.T) {
	col := buildColumn(t, "c", "1", "", "3", "")
	assert.Equal(t, 2, col.NullCount())
	assert.Equal(t, 4, col.Len())
}

func TestBuilderExplicitNulls(t *testing.T) {
	b := NewBuilder("c")
	b.AppendText("a")
	b.AppendText("")
	b.AppendNull()
	col := b.Finish()

	assert.Equal(t, DTypeString, col.Type())
	assert.Equal(t, 1, col.NullCount())
	assert.Equal(t, 3, col.Len())
}

func TestBuilderAllExplicitNulls(t *testing.T) {
	b := NewBuilder("c")
	b.AppendNull()
	b.AppendNull()
	col := b.Finish()
	assert.Equal(t, DTypeNull, col.Type())
	assert.Equal(t, 2, col.NullCount())
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	a := buildColumn(t, "id", "1")
	b := buildColumn(t, "id", "2")
	_, err := New(a, b)
	require.Error(t, err)
}

func TestNewRejectsUnevenColumns(t *testing.T) {
	a := buildColumn(t, "a", "1", "2")
	b := buildColumn(t, "b", "1")
	_, err := New(a, b)
	require.Error(t, err)
}

func mustTable(t *testing.T, cols ...*Column) *Table {
	t.Helper()
	tbl, err := New(cols...)
	require.NoError(t, err)
	return tbl
}

func TestCellAndFormat(t *testing.T) {
	tbl := mustTable(t,
		buildColumn(t, "n", "1", "", "3"),
		buildColumn(t, "s", "x", "y", ""),
	)
	assert.Equal(t, int64(1), tbl.Cell(0, 0).Int)
	assert.True(t, tbl.Cell(1, 0).IsNull())
	assert.Equal(t, "", tbl.Format(1, 0))
	assert.Equal(t, "y", tbl.Format(1, 1))
}

func TestValueFormat(t *testing.T) {
	assert.Equal(t, "3.5", FloatValue(3.5).Format())
	assert.Equal(t, "true", BoolValue(true).Format())
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-15", TimeValue(day).Format())
	stamp := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-15 10:30:00", TimeValue(stamp).Format())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"null before value", Null, IntValue(1), -1},
		{"value after null", IntValue(1), Null, 1},
		{"nulls equal", Null, Null, 0},
		{"int order", IntValue(2), IntValue(10), -1},
		{"int float cross", IntValue(2), FloatValue(1.5), 1},
		{"string order", StringValue("a"), StringValue("b"), -1},
		{"bool order", BoolValue(false), BoolValue(true), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestGather(t *testing.T) {
	tbl := mustTable(t,
		buildColumn(t, "n", "1", "2", "3"),
		buildColumn(t, "s", "a", "b", "c"),
	)
	out := tbl.Gather([]int{2, 0})
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "3", out.Format(0, 0))
	assert.Equal(t, "a", out.Format(1, 1))
	// source unchanged
	assert.Equal(t, 3, tbl.NumRows())
}

func TestProject(t *testing.T) {
	tbl := mustTable(t,
		buildColumn(t, "a", "1"),
		buildColumn(t, "b", "2"),
		buildColumn(t, "c", "3"),
	)
	out := tbl.Project([]int{2, 0})
	require.Equal(t, 2, out.NumCols())
	assert.Equal(t, "c", out.Column(0).Name())
	assert.Equal(t, "a", out.Column(1).Name())
	assert.Equal(t, "3", out.Format(0, 0))
}

func TestColumnIndex(t *testing.T) {
	tbl := mustTable(t, buildColumn(t, "name", "x"))
	i, ok := tbl.ColumnIndex("name")
	require.True(t, ok)
	assert.Equal(t, 0, i)
	_, ok = tbl.ColumnIndex("Name")
	assert.False(t, ok, "lookups are case sensitive")
}

func TestEqual(t *testing.T) {
	a := mustTable(t, buildColumn(t, "n", "1", "2"))
	b := mustTable(t, buildColumn(t, "n", "1", "2"))
	c := mustTable(t, buildColumn(t, "n", "1", "3"))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTypedBuilderCoercion(t *testing.T) {
	b := NewTypedBuilder("f", DTypeFloat)
	b.AppendValue(IntValue(2))
	b.AppendNull()
	b.AppendValue(FloatValue(0.5))
	col := b.Finish()
	require.Equal(t, DTypeFloat, col.Type())
	assert.Equal(t, 1, col.NullCount())
	tbl := mustTable(t, col)
	assert.Equal(t, 2.0, tbl.Cell(0, 0).Float)
}
