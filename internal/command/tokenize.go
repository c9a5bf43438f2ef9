package command

import (
	"strings"
)

// Tokenize splits a command line into shell-style words: whitespace
// separates tokens, single and double quotes preserve embedded whitespace
// inside one token, and a backslash escapes the next character outside
// single quotes. An unterminated quote is a ParseError so a half-typed
// command never half-executes.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		started bool
		quote   rune // 0, '\'' or '"'
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			started = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			started = true
		case r == ' ' || r == '\t':
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}

	if quote != 0 {
		return nil, &ParseError{Kind: ErrUnterminatedQuote, Input: line}
	}
	if escaped {
		return nil, &ParseError{Kind: ErrTrailingEscape, Input: line}
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
