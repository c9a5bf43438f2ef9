// Package search locates matching cells inside a materialized view table.
// It owns the subsequence similarity scorer, which the command interpreter
// reuses for unknown-verb suggestions so both surfaces rank the same way.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/oakwood-commons/tbx/internal/table"
)

// Mode selects how the query is matched against cell text.
type Mode int

const (
	// ModeLiteral is substring matching.
	ModeLiteral Mode = iota
	// ModeRegex compiles the query as a regular expression.
	ModeRegex
	// ModeFuzzy is subsequence-based approximate matching.
	ModeFuzzy
)

func (m Mode) String() string {
	switch m {
	case ModeRegex:
		return "regex"
	case ModeFuzzy:
		return "fuzzy"
	default:
		return "literal"
	}
}

// Match is one matching cell. Score is meaningful only in fuzzy mode.
type Match struct {
	Row   int
	Col   int
	Score float64
}

// DefaultFuzzyThreshold is the minimum similarity a fuzzy match needs.
const DefaultFuzzyThreshold = 0.5

// Options controls a search run.
type Options struct {
	Mode          Mode
	CaseSensitive bool
	// FuzzyThreshold overrides DefaultFuzzyThreshold when > 0.
	FuzzyThreshold float64
}

// Run scans every cell of the view in row-major order and returns the
// matches. Literal and regex matches come back ordered by (row, col); fuzzy
// matches by descending score with (row, col) as the tie break. An invalid
// regex pattern is returned as the compile error, not a panic.
func Run(view *table.Table, query string, opts Options) ([]Match, error) {
	if query == "" || view == nil {
		return nil, nil
	}
	switch opts.Mode {
	case ModeRegex:
		return runRegex(view, query, opts.CaseSensitive)
	case ModeFuzzy:
		threshold := opts.FuzzyThreshold
		if threshold <= 0 {
			threshold = DefaultFuzzyThreshold
		}
		return runFuzzy(view, query, opts.CaseSensitive, threshold), nil
	default:
		return runLiteral(view, query, opts.CaseSensitive), nil
	}
}

func runLiteral(view *table.Table, query string, caseSensitive bool) []Match {
	if !caseSensitive {
		query = strings.ToLower(query)
	}
	var out []Match
	for r := 0; r < view.NumRows(); r++ {
		for c := 0; c < view.NumCols(); c++ {
			cell := view.Format(r, c)
			if !caseSensitive {
				cell = strings.ToLower(cell)
			}
			if strings.Contains(cell, query) {
				out = append(out, Match{Row: r, Col: c})
			}
		}
	}
	return out
}

func runRegex(view *table.Table, query string, caseSensitive bool) ([]Match, error) {
	if !caseSensitive {
		query = "(?i)" + query
	}
	re, err := regexp.Compile(query)
	if err != nil {
		return nil, err
	}
	var out []Match
	for r := 0; r < view.NumRows(); r++ {
		for c := 0; c < view.NumCols(); c++ {
			if re.MatchString(view.Format(r, c)) {
				out = append(out, Match{Row: r, Col: c})
			}
		}
	}
	return out, nil
}

func runFuzzy(view *table.Table, query string, caseSensitive bool, threshold float64) []Match {
	var out []Match
	for r := 0; r < view.NumRows(); r++ {
		for c := 0; c < view.NumCols(); c++ {
			score := Similarity(query, view.Format(r, c), caseSensitive)
			if score >= threshold {
				out = append(out, Match{Row: r, Col: c, Score: score})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Similarity scores how well query appears as a subsequence of candidate,
// in [0, 1]. All query runes must appear in order for a non-zero score;
// the score then rewards consecutive runs and shorter candidates. The same
// scorer ranks fuzzy search results and near-miss verb suggestions.
func Similarity(query, candidate string, caseSensitive bool) float64 {
	if !caseSensitive {
		query = strings.ToLower(query)
		candidate = strings.ToLower(candidate)
	}
	q := []rune(query)
	cand := []rune(candidate)
	if len(q) == 0 || len(cand) == 0 {
		return 0
	}

	matched := 0
	consecutive := 0
	bestRun := 0
	ci := 0
	for _, qr := range q {
		found := false
		for ; ci < len(cand); ci++ {
			if cand[ci] == qr {
				matched++
				consecutive++
				if consecutive > bestRun {
					bestRun = consecutive
				}
				ci++
				found = true
				break
			}
			consecutive = 0
		}
		if !found {
			return 0
		}
	}
	if matched != len(q) {
		return 0
	}

	coverage := float64(len(q)) / float64(len(cand))
	run := float64(bestRun) / float64(len(q))
	return 0.5*coverage + 0.5*run
}
