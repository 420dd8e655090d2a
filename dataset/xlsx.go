package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXSource reads a launch table from one worksheet of an .xlsx workbook.
// The first row holds the headers.
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource reads sheet from the workbook at path. An empty sheet name
// selects the first sheet.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

func (s *XLSXSource) Name() string {
	if s.sheet == "" {
		return s.path
	}
	return s.path + "#" + s.sheet
}

func (s *XLSXSource) Close() error { return nil }

func (s *XLSXSource) Read(ctx context.Context) (*RawTable, error) {
	f, err := xlsx.OpenFile(s.path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := s.getSheet(f)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		if row == nil {
			continue
		}
		rows = append(rows, rowToStrings(row))
	}
	return tableFromRows(rows)
}

func (s *XLSXSource) getSheet(f *xlsx.File) (*xlsx.Sheet, error) {
	if s.sheet != "" {
		sheet, ok := f.Sheet[s.sheet]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", s.sheet)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
