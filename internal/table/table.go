// Package table implements the immutable typed columnar Table that every
// other component consumes. A Table is an ordered sequence of named, typed
// columns of identical length; transformations never mutate a Table, they
// build a new one.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DType identifies the storage type of a column.
type DType int

const (
	DTypeNull DType = iota
	DTypeInt
	DTypeFloat
	DTypeBool
	DTypeString
	DTypeTime
)

// String returns the short lowercase name used in schema displays and exports.
func (d DType) String() string {
	switch d {
	case DTypeInt:
		return "int"
	case DTypeFloat:
		return "float"
	case DTypeBool:
		return "bool"
	case DTypeString:
		return "str"
	case DTypeTime:
		return "time"
	case DTypeNull:
		return "null"
	default:
		return "unknown"
	}
}

// Field is one (name, type) entry of a schema, in display order.
type Field struct {
	Name string
	Type DType
}

// Column is a single typed column. Exactly one backing slice is populated,
// matching Type; valid marks non-null entries and always has the column
// length. Columns are value-immutable once handed to a Table.
type Column struct {
	name  string
	dtype DType

	ints   []int64
	floats []float64
	bools  []bool
	strs   []string
	times  []time.Time

	valid []bool
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the column dtype.
func (c *Column) Type() DType { return c.dtype }

// Len returns the number of entries, nulls included.
func (c *Column) Len() int { return len(c.valid) }

// NullCount returns the number of null entries.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.valid {
		if !v {
			n++
		}
	}
	return n
}

// Value is a dynamically typed cell. Kind is DTypeNull for null cells
// regardless of the owning column's type.
type Value struct {
	Kind  DType
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Time  time.Time
}

// Null is the canonical null cell value.
var Null = Value{Kind: DTypeNull}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == DTypeNull }

// IntValue builds an int cell.
func IntValue(i int64) Value { return Value{Kind: DTypeInt, Int: i} }

// FloatValue builds a float cell.
func FloatValue(f float64) Value { return Value{Kind: DTypeFloat, Float: f} }

// BoolValue builds a bool cell.
func BoolValue(b bool) Value { return Value{Kind: DTypeBool, Bool: b} }

// StringValue builds a string cell.
func StringValue(s string) Value { return Value{Kind: DTypeString, Str: s} }

// TimeValue builds a temporal cell.
func TimeValue(t time.Time) Value { return Value{Kind: DTypeTime, Time: t} }

// Format renders the value as display text. This is the single textual form
// used by the renderer, the search engine, and exporters, so that a match in
// one is a match in all.
func (v Value) Format() string {
	switch v.Kind {
	case DTypeNull:
		return ""
	case DTypeInt:
		return strconv.FormatInt(v.Int, 10)
	case DTypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case DTypeBool:
		return strconv.FormatBool(v.Bool)
	case DTypeString:
		return v.Str
	case DTypeTime:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Native returns the value as a plain Go value (nil for null), suitable for
// CEL activations and database/sql arguments.
func (v Value) Native() any {
	switch v.Kind {
	case DTypeInt:
		return v.Int
	case DTypeFloat:
		return v.Float
	case DTypeBool:
		return v.Bool
	case DTypeString:
		return v.Str
	case DTypeTime:
		return v.Time
	default:
		return nil
	}
}

// Compare orders two values: null sorts before everything, then by the
// natural order of the common type. Mixed numeric kinds compare as floats;
// any other kind mismatch falls back to comparing display text.
func Compare(a, b Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	if a.Kind == b.Kind {
		switch a.Kind {
		case DTypeInt:
			return cmpOrdered(a.Int, b.Int)
		case DTypeFloat:
			return cmpOrdered(a.Float, b.Float)
		case DTypeBool:
			return cmpOrdered(b2i(a.Bool), b2i(b.Bool))
		case DTypeString:
			return strings.Compare(a.Str, b.Str)
		case DTypeTime:
			return a.Time.Compare(b.Time)
		}
	}
	if isNumeric(a.Kind) && isNumeric(b.Kind) {
		return cmpOrdered(a.asFloat(), b.asFloat())
	}
	return strings.Compare(a.Format(), b.Format())
}

func isNumeric(d DType) bool { return d == DTypeInt || d == DTypeFloat }

func (v Value) asFloat() float64 {
	if v.Kind == DTypeInt {
		return float64(v.Int)
	}
	return v.Float
}

func cmpOrdered[T int64 | float64 | int](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Table is the immutable columnar holder. Column order is display order.
type Table struct {
	cols    []*Column
	byName  map[string]int
	numRows int
}

// New builds a Table from columns, validating the equal-length invariant and
// rejecting duplicate names.
func New(cols ...*Column) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.numRows = c.Len()
		} else if c.Len() != t.numRows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.name, c.Len(), t.numRows)
		}
		if _, dup := t.byName[c.name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.name)
		}
		t.byName[c.name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// Empty returns a zero-column, zero-row Table.
func Empty() *Table {
	t, _ := New()
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.numRows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Schema returns the ordered (name, type) pairs.
func (t *Table) Schema() []Field {
	out := make([]Field, len(t.cols))
	for i, c := range t.cols {
		out[i] = Field{Name: c.name, Type: c.dtype}
	}
	return out
}

// Column returns the i-th column.
func (t *Table) Column(i int) *Column { return t.cols[i] }

// ColumnIndex resolves a column name case-sensitively.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.byName[name]
	return i, ok
}

// Cell returns the value at (row, col).
func (t *Table) Cell(row, col int) Value {
	c := t.cols[col]
	if !c.valid[row] {
		return Null
	}
	switch c.dtype {
	case DTypeInt:
		return IntValue(c.ints[row])
	case DTypeFloat:
		return FloatValue(c.floats[row])
	case DTypeBool:
		return BoolValue(c.bools[row])
	case DTypeString:
		return StringValue(c.strs[row])
	case DTypeTime:
		return TimeValue(c.times[row])
	default:
		return Null
	}
}

// Format renders the cell at (row, col) as display text.
func (t *Table) Format(row, col int) string {
	return t.Cell(row, col).Format()
}

// Row returns all values of a row in column order.
func (t *Table) Row(row int) []Value {
	out := make([]Value, len(t.cols))
	for i := range t.cols {
		out[i] = t.Cell(row, i)
	}
	return out
}

// Gather builds a new Table containing the given rows, in the given order.
// Indices may repeat; each must be in [0, NumRows).
func (t *Table) Gather(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		nc := &Column{name: c.name, dtype: c.dtype, valid: make([]bool, len(rows))}
		switch c.dtype {
		case DTypeInt:
			nc.ints = make([]int64, len(rows))
			for j, r := range rows {
				nc.ints[j], nc.valid[j] = c.ints[r], c.valid[r]
			}
		case DTypeFloat:
			nc.floats = make([]float64, len(rows))
			for j, r := range rows {
				nc.floats[j], nc.valid[j] = c.floats[r], c.valid[r]
			}
		case DTypeBool:
			nc.bools = make([]bool, len(rows))
			for j, r := range rows {
				nc.bools[j], nc.valid[j] = c.bools[r], c.valid[r]
			}
		case DTypeString:
			nc.strs = make([]string, len(rows))
			for j, r := range rows {
				nc.strs[j], nc.valid[j] = c.strs[r], c.valid[r]
			}
		case DTypeTime:
			nc.times = make([]time.Time, len(rows))
			for j, r := range rows {
				nc.times[j], nc.valid[j] = c.times[r], c.valid[r]
			}
		case DTypeNull:
			// valid stays all-false
		}
		cols[i] = nc
	}
	nt, _ := New(cols...)
	return nt
}

// Project builds a new Table containing the given columns, in the given
// order. The backing slices are shared; columns are immutable so this is safe.
func (t *Table) Project(cols []int) *Table {
	out := make([]*Column, len(cols))
	for i, c := range cols {
		out[i] = t.cols[c]
	}
	nt, _ := New(out...)
	return nt
}

// Equal reports whether two tables have identical schema and cell data.
// Used by tests and by the pipeline cache validation.
func (t *Table) Equal(o *Table) bool {
	if t.NumRows() != o.NumRows() || t.NumCols() != o.NumCols() {
		return false
	}
	for i := range t.cols {
		if t.cols[i].name != o.cols[i].name || t.cols[i].dtype != o.cols[i].dtype {
			return false
		}
	}
	for r := 0; r < t.NumRows(); r++ {
		for c := 0; c < t.NumCols(); c++ {
			a, b := t.Cell(r, c), o.Cell(r, c)
			if a.Kind != b.Kind || Compare(a, b) != 0 {
				return false
			}
		}
	}
	return true
}
