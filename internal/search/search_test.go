package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tbx/internal/table"
)

func nameTable(t *testing.T, names ...string) *table.Table {
	t.Helper()
	b := table.NewBuilder("name")
	for _, n := range names {
		b.Append(n)
	}
	tbl, err := table.New(b.Finish())
	require.NoError(t, err)
	return tbl
}

func TestLiteralCaseInsensitive(t *testing.T) {
	view := nameTable(t, "Jon", "mary", "JONAS")
	matches, err := Run(view, "jon", Options{Mode: ModeLiteral})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Row)
	assert.Equal(t, 2, matches[1].Row)
}

func TestLiteralCaseSensitive(t *testing.T) {
	view := nameTable(t, "Jon", "jon")
	matches, err := Run(view, "Jon", Options{Mode: ModeLiteral, CaseSensitive: true})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Row)
}

func TestLiteralRowMajorOrder(t *testing.T) {
	a := table.NewBuilder("a")
	b := table.NewBuilder("b")
	a.Append("x1")
	b.Append("x2")
	a.Append("x3")
	b.Append("y")
	view, err := table.New(a.Finish(), b.Finish())
	require.NoError(t, err)

	matches, err := Run(view, "x", Options{Mode: ModeLiteral})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, Match{Row: 0, Col: 0}, matches[0])
	assert.Equal(t, Match{Row: 0, Col: 1}, matches[1])
	assert.Equal(t, Match{Row: 1, Col: 0}, matches[2])
}

func TestRegex(t *testing.T) {
	view := nameTable(t, "alpha-1", "beta-22", "gamma")
	matches, err := Run(view, `-\d+$`, Options{Mode: ModeRegex})
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestRegexCompileError(t *testing.T) {
	view := nameTable(t, "x")
	_, err := Run(view, "(", Options{Mode: ModeRegex})
	require.Error(t, err)
}

func TestFuzzyRanking(t *testing.T) {
	view := nameTable(t, "John", "Joanna", "Jon", "Mary")
	matches, err := Run(view, "jo", Options{Mode: ModeFuzzy})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	// shortest candidate with the full run wins
	assert.Equal(t, 2, matches[0].Row) // Jon
	assert.Equal(t, 0, matches[1].Row) // John
	assert.Equal(t, 1, matches[2].Row) // Joanna
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.Greater(t, matches[1].Score, matches[2].Score)
}

func TestFuzzyThresholdExcludes(t *testing.T) {
	view := nameTable(t, "a-very-long-candidate-with-a-j-and-o")
	matches, err := Run(view, "jo", Options{Mode: ModeFuzzy})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestEmptyQueryMatchesNothing(t *testing.T) {
	view := nameTable(t, "x")
	for _, mode := range []Mode{ModeLiteral, ModeRegex, ModeFuzzy} {
		matches, err := Run(view, "", Options{Mode: mode})
		require.NoError(t, err)
		assert.Empty(t, matches)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		query     string
		candidate string
		want      float64
	}{
		{"jo", "Jon", 5.0 / 6.0},
		{"jo", "John", 0.75},
		{"jo", "Joanna", 2.0 / 3.0},
		{"jo", "Mary", 0},
		{"oj", "Jon", 0}, // order matters
		{"", "Jon", 0},
		{"jo", "", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Similarity(tt.query, tt.candidate, false), 1e-9,
			"Similarity(%q, %q)", tt.query, tt.candidate)
	}
}

func TestSimilarityExactMatchIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("jon", "Jon", false), 1e-9)
}
