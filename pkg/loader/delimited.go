package loader

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/oakwood-commons/tbx/internal/table"
)

// loadDelimited parses CSV/TSV style files. Ragged rows are tolerated; short
// rows are padded with nulls so one bad line never sinks the whole file.
func loadDelimited(path string, delim rune, noHeader bool) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(ErrIO, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, loadErr(ErrMalformed, path, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\uFEFF")
	}
	return fromRecords(path, records, noHeader)
}
