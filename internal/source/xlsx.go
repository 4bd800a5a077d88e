package source

import (
	"context"
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-petpassport/internal/routes"
)

// Workbook reads a worksheet from a local XLSX export of the spreadsheet.
type Workbook struct {
	path  string
	sheet string
}

// NewWorkbook returns a Workbook source. An empty sheet name selects the
// first worksheet.
func NewWorkbook(path, sheet string) *Workbook {
	return &Workbook{path: path, sheet: strings.TrimSpace(sheet)}
}

func (w *Workbook) Fetch(ctx context.Context) ([]routes.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fetchError(err, "open workbook "+w.path)
	}
	defer f.Close()

	sheet, err := w.resolveSheet(f.GetSheetList())
	if err != nil {
		return nil, fetchError(err, "read workbook "+w.path)
	}
	table, err := f.GetRows(sheet)
	if err != nil {
		return nil, fetchError(err, "read workbook "+w.path)
	}
	rows, err := rowsFromTable(table)
	if err != nil {
		return nil, fetchError(err, "map workbook rows")
	}
	return rows, nil
}

func (w *Workbook) resolveSheet(names []string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if w.sheet == "" {
		return names[0], nil
	}
	for _, name := range names {
		if name == w.sheet {
			return name, nil
		}
	}
	return "", errors.New("sheet " + w.sheet + " not found")
}
