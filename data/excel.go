package data

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Sheet of a workbook, Header is the first row and Rows every row after it
// padded to the width of the sheet
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Records returns each row keyed by its header name, columns without a
// header are skipped
func (s *Sheet) Records() []map[string]string {
	records := make([]map[string]string, len(s.Rows))
	for i, row := range s.Rows {
		record := make(map[string]string, len(s.Header))
		for col, name := range s.Header {
			if name == "" {
				continue
			}
			record[name] = row[col]
		}
		records[i] = record
	}
	return records
}

// ReadExcelSheet reads sheet of file, blank cells are returned as ""
func ReadExcelSheet(file, sheet string) (*Sheet, error) {
	f, err := excelize.OpenFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", file)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}

	// GetRows trims trailing blank cells, pad every row back to the widest
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}

	s := &Sheet{Header: make([]string, width), Rows: make([][]string, 0)}
	if len(rows) == 0 {
		return s, nil
	}
	s.Header = rows[0]
	s.Rows = rows[1:]
	return s, nil
}

// ReadExcel returns every row after the header row of sheet
func ReadExcel(file, sheet string) ([][]string, error) {
	s, err := ReadExcelSheet(file, sheet)
	if err != nil {
		return nil, err
	}
	return s.Rows, nil
}

// WriteExcelCell sets the cell at the 1 based row and col of sheet and saves file
func WriteExcelCell(file, sheet string, row, col int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.Wrapf(err, "invalid cell %d,%d", row, col)
	}

	f, err := excelize.OpenFile(file)
	if err != nil {
		return errors.Wrapf(err, "failed to open workbook %s", file)
	}
	defer f.Close()

	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return errors.Wrapf(err, "failed to set %s!%s", sheet, cell)
	}
	if err := f.Save(); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", file)
	}
	return nil
}
