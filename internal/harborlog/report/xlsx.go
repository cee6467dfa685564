package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet name used for spreadsheet exports.
const DefaultSheet = "Entries"

// WriteXLSX writes rows as a single-sheet workbook with the same header and
// cells as the CSV export. Every cell is stored as text so values round-trip
// unchanged. An empty set writes nothing and reports false.
func WriteXLSX[T Fielder](w io.Writer, sheet string, rows []T) (bool, error) {
	header, cells := Table(rows)
	if header == nil {
		return false, nil
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return false, fmt.Errorf("xlsx sheet name: %w", err)
	}

	for i, line := range append([][]string{header}, cells...) {
		for j, v := range line {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return false, fmt.Errorf("xlsx cell: %w", err)
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return false, fmt.Errorf("xlsx set %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return false, fmt.Errorf("write xlsx: %w", err)
	}
	return true, nil
}
