package loader

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// loadWorkbook reads an xlsx workbook, yielding one source per non-empty
// sheet. A single-sheet workbook is named after the file; with several
// sheets the sheet name is appended so tabs stay tellable apart.
func loadWorkbook(path string, noHeader bool) ([]Source, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, loadErr(ErrIO, path, err)
	}
	defer wb.Close()

	var out []Source
	var kept []string
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, loadErr(ErrMalformed, path, fmt.Errorf("sheet %q: %w", sheet, err))
		}
		if len(rows) == 0 {
			continue
		}
		t, err := fromRecords(path, rows, noHeader)
		if err != nil {
			return nil, err
		}
		out = append(out, Source{Name: baseName(path), Path: path, Table: t})
		kept = append(kept, sheet)
	}
	if len(out) > 1 {
		for i := range out {
			out[i].Name = fmt.Sprintf("%s/%s", baseName(path), kept[i])
		}
	}
	if len(out) == 0 {
		return nil, loadErr(ErrMalformed, path, fmt.Errorf("workbook has no data"))
	}
	return out, nil
}
