package source

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/goliatone/go-petpassport/internal/routes"
)

// SheetsConfig configures the Google Sheets source.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	// Options are appended after the credentials option; tests use them to
	// point the client at a local endpoint.
	Options []option.ClientOption
}

// Sheets reads a worksheet through the Sheets v4 values API with a service
// account.
type Sheets struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheets authenticates with the service account file, or the ambient
// Google credentials when none is set.
func NewSheets(ctx context.Context, cfg SheetsConfig) (*Sheets, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	opts = append(opts, cfg.Options...)

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fetchError(err, "create sheets client")
	}
	return &Sheets{
		service:       srv,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetName:     cfg.SheetName,
	}, nil
}

// Fetch reads the whole worksheet; the first row is the header.
func (s *Sheets) Fetch(ctx context.Context) ([]routes.Row, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange(s.sheetName)).Context(ctx).Do()
	if err != nil {
		return nil, fetchError(err, "read spreadsheet "+s.spreadsheetID)
	}
	table := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		cells := make([]string, len(values))
		for j, value := range values {
			if value == nil {
				continue
			}
			cells[j] = fmt.Sprint(value)
		}
		table[i] = cells
	}
	rows, err := rowsFromTable(table)
	if err != nil {
		return nil, fetchError(err, "map spreadsheet rows")
	}
	return rows, nil
}

// sheetRange quotes a worksheet name for A1 notation.
func sheetRange(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "A:Z"
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
