package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tbx/internal/table"
)

func col(t *testing.T, name string, cells ...string) *table.Column {
	t.Helper()
	b := table.NewBuilder(name)
	for _, c := range cells {
		b.Append(c)
	}
	return b.Finish()
}

func people(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		col(t, "name", "Jon", "Mary", "Ann", "Bob"),
		col(t, "age", "35", "28", "41", "31"),
		col(t, "city", "Oslo", "Lima", "Oslo", ""),
	)
	require.NoError(t, err)
	return tbl
}

func formatColumn(tbl *table.Table, c int) []string {
	out := make([]string, tbl.NumRows())
	for r := range out {
		out[r] = tbl.Format(r, c)
	}
	return out
}

func TestSelectProjectsAndReorders(t *testing.T) {
	out, err := Apply(people(t), []Step{SelectStep{Columns: []string{"age", "name"}}})
	require.NoError(t, err)
	require.Equal(t, 2, out.NumCols())
	assert.Equal(t, "age", out.Column(0).Name())
	assert.Equal(t, "name", out.Column(1).Name())
	assert.Equal(t, []string{"35", "28", "41", "31"}, formatColumn(out, 0))
}

func TestSelectUnknownColumn(t *testing.T) {
	_, err := Apply(people(t), []Step{SelectStep{Columns: []string{"nope"}}})
	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, ErrUnknownColumn, qerr.Kind)
	assert.Equal(t, "nope", qerr.Column)
}

func TestSelectDuplicateColumnRejected(t *testing.T) {
	out, err := Apply(people(t), []Step{SelectStep{Columns: []string{"name", "name"}}})
	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, ErrBadExpression, qerr.Kind)
	assert.Nil(t, out, "a rejected step must return error, not a view")
}

func TestFilterThenOrder(t *testing.T) {
	steps := []Step{
		FilterStep{Expr: "age > 30"},
		SortStep{Keys: []SortKey{{Column: "name"}}},
	}
	out, err := Apply(people(t), steps)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bob", "Jon"}, formatColumn(out, 0))
}

func TestFilterOnStrings(t *testing.T) {
	out, err := Apply(people(t), []Step{FilterStep{Expr: `city == "Oslo"`}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jon", "Ann"}, formatColumn(out, 0))
}

func TestFilterUnknownColumn(t *testing.T) {
	_, err := Apply(people(t), []Step{FilterStep{Expr: "salary > 10"}})
	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, ErrUnknownColumn, qerr.Kind)
	assert.Equal(t, "salary", qerr.Column)
}

func TestFilterTypeMismatch(t *testing.T) {
	_, err := Apply(people(t), []Step{FilterStep{Expr: `age > "x"`}})
	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, ErrTypeMismatch, qerr.Kind)
}

func TestFilterNonBoolResult(t *testing.T) {
	_, err := Apply(people(t), []Step{FilterStep{Expr: "age + 1"}})
	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, ErrTypeMismatch, qerr.Kind)
}

func TestSortStableAndNullFirst(t *testing.T) {
	tbl, err := table.New(
		col(t, "grp", "b", "a", "b", "a", ""),
		col(t, "seq", "1", "2", "3", "4", "5"),
	)
	require.NoError(t, err)

	out, err := Apply(tbl, []Step{SortStep{Keys: []SortKey{{Column: "grp"}}}})
	require.NoError(t, err)
	// null first, then groups; ties keep input order
	assert.Equal(t, []string{"5", "2", "4", "1", "3"}, formatColumn(out, 1))
}

func TestSortDescending(t *testing.T) {
	out, err := Apply(people(t), []Step{SortStep{Keys: []SortKey{{Column: "age", Descending: true}}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"41", "35", "31", "28"}, formatColumn(out, 1))
}

func TestSortMultiKey(t *testing.T) {
	tbl, err := table.New(
		col(t, "grp", "x", "y", "x", "y"),
		col(t, "n", "2", "9", "1", "3"),
	)
	require.NoError(t, err)
	out, err := Apply(tbl, []Step{SortStep{Keys: []SortKey{
		{Column: "grp"},
		{Column: "n", Descending: true},
	}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "9", "3"}, formatColumn(out, 1))
}

func TestApplyIsDeterministicAndPure(t *testing.T) {
	base := people(t)
	steps := []Step{
		FilterStep{Expr: "age > 30"},
		SortStep{Keys: []SortKey{{Column: "name"}}},
		SelectStep{Columns: []string{"name"}},
	}
	first, err := Apply(base, steps)
	require.NoError(t, err)
	second, err := Apply(base, steps)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	// base survives untouched
	assert.Equal(t, 4, base.NumRows())
	assert.Equal(t, 3, base.NumCols())
}

func TestPipelineUndoRestoresPriorView(t *testing.T) {
	base := people(t)
	p := &Pipeline{}
	p.Push(FilterStep{Expr: "age > 30"})
	before, err := p.Evaluate(base)
	require.NoError(t, err)

	p.Push(SelectStep{Columns: []string{"name"}})
	require.True(t, p.Undo())

	after, err := p.Evaluate(base)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestPipelineResetAndString(t *testing.T) {
	p := &Pipeline{}
	assert.Equal(t, "", p.String())
	p.Push(FilterStep{Expr: "age > 30"})
	p.Push(SortStep{Keys: []SortKey{{Column: "name"}}})
	assert.Equal(t, "filter age > 30 | order name:asc", p.String())
	p.Reset()
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Undo())
}

func TestContentHash(t *testing.T) {
	a := []Step{FilterStep{Expr: "age > 30"}, SelectStep{Columns: []string{"name"}}}
	b := []Step{FilterStep{Expr: "age > 30"}, SelectStep{Columns: []string{"name"}}}
	c := []Step{SelectStep{Columns: []string{"name"}}, FilterStep{Expr: "age > 30"}}
	assert.Equal(t, ContentHash(a), ContentHash(b))
	assert.NotEqual(t, ContentHash(a), ContentHash(c))
}

func TestCloneIsolatesSnapshots(t *testing.T) {
	p := &Pipeline{}
	p.Push(FilterStep{Expr: "age > 30"})
	snap := p.Clone()
	p.Push(SelectStep{Columns: []string{"name"}})
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 2, p.Len())
}
