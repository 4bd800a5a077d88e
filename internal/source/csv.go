package source

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/goliatone/go-petpassport/internal/routes"
)

// CSVFile reads a CSV export of the worksheet.
type CSVFile struct {
	path string
}

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (c *CSVFile) Fetch(ctx context.Context) ([]routes.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(c.path)
	if err != nil {
		return nil, fetchError(err, "open csv "+c.path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	table, err := reader.ReadAll()
	if err != nil {
		return nil, fetchError(err, "read csv "+c.path)
	}
	rows, err := rowsFromTable(table)
	if err != nil {
		return nil, fetchError(err, "map csv rows")
	}
	return rows, nil
}
