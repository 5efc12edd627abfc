package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// OpenExcel reads every sheet of an .xlsx workbook. Cells are returned as raw
// values (no number formatting), so numeric cells keep their stored precision.
func OpenExcel(path string) (*Memory, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	sheets := make([]*Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, NewSheet(name, rows, declaredColumns(f, name)))
	}
	return NewMemory(sheets...), nil
}

// declaredColumns reads the sheet's used range ("A1:N40") and returns the
// column count of its bottom-right corner, or 0 when the range is absent.
func declaredColumns(f *excelize.File, sheet string) int {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil || dim == "" {
		return 0
	}
	ref := dim
	if i := strings.LastIndex(dim, ":"); i >= 0 {
		ref = dim[i+1:]
	}
	col, _, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0
	}
	return col
}
