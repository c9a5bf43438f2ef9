package loader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/oakwood-commons/tbx/internal/table"
)

// loadFixedWidth parses fixed-width files. Column boundaries are inferred
// from the first line: a new column starts wherever a non-space rune follows
// a run of two or more spaces. Cells are the rune ranges between boundaries,
// trimmed.
func loadFixedWidth(path string, noHeader bool) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(ErrIO, path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, loadErr(ErrIO, path, err)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return table.Empty(), nil
	}

	starts := columnStarts(lines[0])
	if len(starts) == 0 {
		return nil, loadErr(ErrMalformed, path, fmt.Errorf("first line is blank"))
	}
	records := make([][]string, len(lines))
	for i, line := range lines {
		records[i] = sliceFields(line, starts)
	}
	return fromRecords(path, records, noHeader)
}

// columnStarts returns the rune offsets where columns begin in the template
// line.
func columnStarts(line string) []int {
	runes := []rune(line)
	var starts []int
	spaces := 2 // line-leading field counts as preceded by a gap
	for i, r := range runes {
		if r == ' ' {
			spaces++
			continue
		}
		if spaces >= 2 {
			starts = append(starts, i)
		}
		spaces = 0
	}
	return starts
}

func sliceFields(line string, starts []int) []string {
	runes := []rune(line)
	fields := make([]string, len(starts))
	for i, start := range starts {
		if start >= len(runes) {
			fields[i] = ""
			continue
		}
		end := len(runes)
		if i+1 < len(starts) && starts[i+1] < end {
			end = starts[i+1]
		}
		fields[i] = strings.TrimSpace(string(runes[start:end]))
	}
	return fields
}
