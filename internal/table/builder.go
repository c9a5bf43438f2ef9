package table

import (
	"strconv"
	"strings"
	"time"
)

// Builder accumulates raw text cells for one column and infers the narrowest
// type that every non-empty cell parses as, in the order int, float, bool,
// time, falling back to string. Empty cells become nulls. Loaders use this so
// that a single bad cell demotes the column to text instead of failing the
// whole load.
type Builder struct {
	name string
	raw  []string
	null []bool
}

// NewBuilder creates a builder for the named column.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Append adds one raw cell. Whitespace is preserved; only the empty string is
// treated as null.
func (b *Builder) Append(cell string) {
	b.raw = append(b.raw, cell)
	b.null = append(b.null, cell == "")
}

// AppendNull adds an explicitly null cell.
func (b *Builder) AppendNull() {
	b.raw = append(b.raw, "")
	b.null = append(b.null, true)
}

// AppendText adds one cell that is never null, even when empty. Sources that
// distinguish NULL from the empty string use this together with AppendNull.
func (b *Builder) AppendText(cell string) {
	b.raw = append(b.raw, cell)
	b.null = append(b.null, false)
}

// Len returns the number of appended cells.
func (b *Builder) Len() int { return len(b.raw) }

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// Finish infers the column type and materializes the column.
func (b *Builder) Finish() *Column {
	c := &Column{name: b.name, valid: make([]bool, len(b.raw))}

	tryAll := func(parse func(s string, i int) bool) bool {
		any := false
		for i, s := range b.raw {
			if b.null[i] {
				continue
			}
			if !parse(s, i) {
				return false
			}
			any = true
		}
		return any
	}

	ints := make([]int64, len(b.raw))
	if tryAll(func(s string, i int) bool {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		ints[i] = v
		return err == nil
	}) {
		c.dtype = DTypeInt
		c.ints = ints
		b.markValid(c)
		return c
	}

	floats := make([]float64, len(b.raw))
	if tryAll(func(s string, i int) bool {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		floats[i] = v
		return err == nil
	}) {
		c.dtype = DTypeFloat
		c.floats = floats
		b.markValid(c)
		return c
	}

	bools := make([]bool, len(b.raw))
	if tryAll(func(s string, i int) bool {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "t", "yes":
			bools[i] = true
			return true
		case "false", "f", "no":
			bools[i] = false
			return true
		default:
			return false
		}
	}) {
		c.dtype = DTypeBool
		c.bools = bools
		b.markValid(c)
		return c
	}

	times := make([]time.Time, len(b.raw))
	if tryAll(func(s string, i int) bool {
		for _, layout := range timeLayouts {
			if v, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				times[i] = v
				return true
			}
		}
		return false
	}) {
		c.dtype = DTypeTime
		c.times = times
		b.markValid(c)
		return c
	}

	// All-null columns stay DTypeNull; anything else is text.
	allNull := true
	for _, isNull := range b.null {
		if !isNull {
			allNull = false
			break
		}
	}
	if allNull {
		c.dtype = DTypeNull
		return c
	}
	c.dtype = DTypeString
	c.strs = append([]string(nil), b.raw...)
	b.markValid(c)
	return c
}

func (b *Builder) markValid(c *Column) {
	for i, isNull := range b.null {
		c.valid[i] = !isNull
	}
}

// TypedBuilder accumulates already-typed values for one column, for sources
// that carry their own schema (SQLite, query results).
type TypedBuilder struct {
	name  string
	dtype DType
	col   Column
}

// NewTypedBuilder creates a typed builder with a fixed dtype.
func NewTypedBuilder(name string, dtype DType) *TypedBuilder {
	return &TypedBuilder{name: name, dtype: dtype, col: Column{name: name, dtype: dtype}}
}

// AppendNull adds a null cell.
func (b *TypedBuilder) AppendNull() {
	b.grow()
	b.col.valid = append(b.col.valid, false)
}

// AppendValue adds one cell. A value of a different kind than the builder's
// dtype is coerced through its display text; nulls pass through.
func (b *TypedBuilder) AppendValue(v Value) {
	if v.IsNull() {
		b.AppendNull()
		return
	}
	b.grow()
	b.col.valid = append(b.col.valid, true)
	switch b.dtype {
	case DTypeInt:
		if v.Kind == DTypeInt {
			b.col.ints[len(b.col.ints)-1] = v.Int
		} else {
			b.col.ints[len(b.col.ints)-1] = int64(v.asFloat())
		}
	case DTypeFloat:
		b.col.floats[len(b.col.floats)-1] = v.asFloat()
	case DTypeBool:
		b.col.bools[len(b.col.bools)-1] = v.Bool
	case DTypeString:
		b.col.strs[len(b.col.strs)-1] = v.Format()
	case DTypeTime:
		b.col.times[len(b.col.times)-1] = v.Time
	}
}

func (b *TypedBuilder) grow() {
	switch b.dtype {
	case DTypeInt:
		b.col.ints = append(b.col.ints, 0)
	case DTypeFloat:
		b.col.floats = append(b.col.floats, 0)
	case DTypeBool:
		b.col.bools = append(b.col.bools, false)
	case DTypeString:
		b.col.strs = append(b.col.strs, "")
	case DTypeTime:
		b.col.times = append(b.col.times, time.Time{})
	}
}

// Finish materializes the column.
func (b *TypedBuilder) Finish() *Column {
	c := b.col
	return &c
}
