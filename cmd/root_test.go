package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
		ok   bool
	}{
		{",", ',', true},
		{";", ';', true},
		{"|", '|', true},
		{`\t`, '\t', true},
		{"tab", '\t', true},
		{"", 0, false},
		{"ab", 0, false},
	}
	for _, tt := range tests {
		got, err := parseDelimiter(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSplitScript(t *testing.T) {
	assert.Equal(t, []string{"filter age > 30", "order name"},
		splitScript("filter age > 30; order name"))
	assert.Equal(t, []string{"filter age > 30", "order name"},
		splitScript("filter age > 30\norder name\n"))
	assert.Equal(t, []string{"select a"},
		splitScript("  select a  ;; \n "))
	assert.Nil(t, splitScript(""))
}

func TestSplitScriptKeepsSQLIntact(t *testing.T) {
	assert.Equal(t,
		[]string{"sql SELECT name FROM t; SELECT age FROM t", "order name"},
		splitScript("sql SELECT name FROM t; SELECT age FROM t\norder name"))
}

func TestSplitScriptQuotedSeparator(t *testing.T) {
	assert.Equal(t,
		[]string{`filter city == "a;b"`, "order name"},
		splitScript(`filter city == "a;b"; order name`))
	assert.Equal(t,
		[]string{"filter city == 'x;y'"},
		splitScript("filter city == 'x;y'"))
}
