package query

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/oakwood-commons/tbx/internal/table"
)

// Step is one transformation in a pipeline. The variant set is closed:
// Select, Filter, Sort, Raw. Steps are immutable value objects; editing a
// pipeline means truncating or appending the step list, never changing a
// step in place.
type Step interface {
	// apply consumes the previous step's output and produces a new table.
	apply(in *table.Table) (*table.Table, error)
	// String renders the step back as command text, used for the content
	// hash and for the pipeline display in the status bar.
	String() string
}

// SelectStep projects an ordered subset (or reorder) of columns by name.
type SelectStep struct {
	Columns []string
}

func (s SelectStep) String() string {
	return "select " + strings.Join(s.Columns, ",")
}

func (s SelectStep) apply(in *table.Table) (*table.Table, error) {
	idx := make([]int, len(s.Columns))
	seen := make(map[string]bool, len(s.Columns))
	for i, name := range s.Columns {
		j, ok := in.ColumnIndex(name)
		if !ok {
			return nil, unknownColumn(name)
		}
		// Selecting a column twice would break the schema's name
		// uniqueness invariant; reject it instead of producing a view the
		// table constructor refuses.
		if seen[name] {
			return nil, &Error{Kind: ErrBadExpression, Detail: fmt.Sprintf("column %q selected twice", name)}
		}
		seen[name] = true
		idx[i] = j
	}
	return in.Project(idx), nil
}

// SortKey is one (column, direction) pair of a sort step.
type SortKey struct {
	Column     string
	Descending bool
}

// SortStep orders rows by a key list; ties keep their input order.
type SortStep struct {
	Keys []SortKey
}

func (s SortStep) String() string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		dir := "asc"
		if k.Descending {
			dir = "desc"
		}
		parts[i] = k.Column + ":" + dir
	}
	return "order " + strings.Join(parts, ",")
}

// FilterStep keeps rows whose predicate expression evaluates to true.
type FilterStep struct {
	Expr string
}

func (s FilterStep) String() string { return "filter " + s.Expr }

// RawStep runs a query-language statement over the input treated as a
// relation; the output schema may differ entirely.
type RawStep struct {
	Statement string
}

func (s RawStep) String() string { return "sql " + s.Statement }

// ContentHash hashes a step sequence. Two pipelines with the same hash
// produce bit-identical views over the same base, which is what makes the
// view cache safe.
func ContentHash(steps []Step) uint64 {
	h := fnv.New64a()
	for i, s := range steps {
		fmt.Fprintf(h, "%d\x00%s\x00", i, s.String())
	}
	return h.Sum64()
}
