package query

import (
	"sort"

	"github.com/oakwood-commons/tbx/internal/table"
)

func (s SortStep) apply(in *table.Table) (*table.Table, error) {
	cols := make([]int, len(s.Keys))
	for i, k := range s.Keys {
		j, ok := in.ColumnIndex(k.Column)
		if !ok {
			return nil, unknownColumn(k.Column)
		}
		cols[i] = j
	}

	order := make([]int, in.NumRows())
	for i := range order {
		order[i] = i
	}
	// SliceStable keeps equal keys in original row order, which is the
	// stability guarantee the rest of the system relies on.
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := order[a], order[b]
		for i, c := range cols {
			cmp := table.Compare(in.Cell(ra, c), in.Cell(rb, c))
			if cmp == 0 {
				continue
			}
			if s.Keys[i].Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return in.Gather(order), nil
}
