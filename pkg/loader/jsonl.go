package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/oakwood-commons/tbx/internal/table"
)

// loadJSONLines parses newline-delimited JSON where each line is one object.
// The schema is the union of keys in first-seen order; objects missing a key
// contribute a null. Nested values are kept as compact JSON text.
func loadJSONLines(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(ErrIO, path, err)
	}
	defer f.Close()

	var (
		keys    []string
		keyPos  = map[string]int{}
		objects []map[string]json.RawMessage
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		obj := map[string]json.RawMessage{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, loadErr(ErrMalformed, path, fmt.Errorf("line %d: %w", lineNo, err))
		}
		for _, k := range objectKeyOrder(line) {
			if _, seen := keyPos[k]; !seen {
				keyPos[k] = len(keys)
				keys = append(keys, k)
			}
		}
		objects = append(objects, obj)
	}
	if err := sc.Err(); err != nil {
		return nil, loadErr(ErrIO, path, err)
	}
	if len(objects) == 0 {
		return table.Empty(), nil
	}

	builders := make([]*table.Builder, len(keys))
	for i, k := range keys {
		builders[i] = table.NewBuilder(k)
	}
	for _, obj := range objects {
		for i, k := range keys {
			raw, ok := obj[k]
			if !ok {
				builders[i].Append("")
				continue
			}
			builders[i].Append(jsonCellText(raw))
		}
	}
	cols := make([]*table.Column, len(builders))
	for i, b := range builders {
		cols[i] = b.Finish()
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, loadErr(ErrMalformed, path, err)
	}
	return t, nil
}

// objectKeyOrder walks the top-level object's tokens to recover key order,
// which map decoding discards. Errors are ignored; the line has already been
// validated by Unmarshal.
func objectKeyOrder(line string) []string {
	dec := json.NewDecoder(strings.NewReader(line))
	tok, err := dec.Token() // opening brace
	if err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		k, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, k)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}

// jsonCellText renders one JSON value as cell text for type inference.
// Strings are unquoted, null becomes the empty cell, everything else keeps
// its JSON form.
func jsonCellText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "null":
		return ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return str
		}
		return s
	default:
		return s
	}
}
