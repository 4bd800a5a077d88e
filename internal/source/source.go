// Package source reads route rows from the supported inputs: a Google
// Sheets worksheet, an XLSX workbook, a CSV file or a directory of Markdown
// route files.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-petpassport/internal/logging"
	"github.com/goliatone/go-petpassport/internal/routes"
	"github.com/goliatone/go-petpassport/pkg/interfaces"
)

// TextCodeFetchFailed tags every error returned by Fetch.
const TextCodeFetchFailed = "SOURCE_FETCH_FAILED"

// Kind selects a Source implementation.
type Kind string

const (
	KindSheets   Kind = "sheets"
	KindXLSX     Kind = "xlsx"
	KindCSV      Kind = "csv"
	KindMarkdown Kind = "markdown"
)

var (
	ErrUnknownKind     = errors.New("source: unknown kind")
	ErrDuplicateHeader = errors.New("source: duplicate header")
)

// Source returns route rows in input order. Rows are keyed by header name;
// cells missing from a short row are empty strings.
type Source interface {
	Fetch(ctx context.Context) ([]routes.Row, error)
}

// Config selects and configures a Source.
type Config struct {
	Kind            Kind
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	// Path is the workbook, CSV file or Markdown directory for the file
	// based kinds.
	Path string
}

// New builds the Source described by cfg, wrapped so every fetch is logged.
func New(ctx context.Context, cfg Config, logger interfaces.Logger) (Source, error) {
	var (
		src Source
		err error
	)
	switch Kind(strings.ToLower(strings.TrimSpace(string(cfg.Kind)))) {
	case KindSheets, "":
		src, err = NewSheets(ctx, SheetsConfig{
			SpreadsheetID:   cfg.SpreadsheetID,
			SheetName:       cfg.SheetName,
			CredentialsFile: cfg.CredentialsFile,
		})
	case KindXLSX:
		src = NewWorkbook(cfg.Path, cfg.SheetName)
	case KindCSV:
		src = NewCSVFile(cfg.Path)
	case KindMarkdown:
		src = NewMarkdownDir(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	return WithLogging(src, string(cfg.Kind), logger), nil
}

// WithLogging wraps src so each fetch logs its duration and row count.
func WithLogging(src Source, name string, logger interfaces.Logger) Source {
	if name == "" {
		name = string(KindSheets)
	}
	return &loggedSource{inner: src, name: name, logger: logging.OrNoOp(logger)}
}

type loggedSource struct {
	inner  Source
	name   string
	logger interfaces.Logger
}

func (s *loggedSource) Fetch(ctx context.Context) ([]routes.Row, error) {
	start := time.Now()
	rows, err := s.inner.Fetch(ctx)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		s.logger.Error("source.fetch.failed", "source", s.name, "duration_ms", elapsed, "error", err)
		return nil, err
	}
	s.logger.Info("source.fetch.success", "source", s.name, "rows", len(rows), "duration_ms", elapsed)
	return rows, nil
}

func fetchError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).WithTextCode(TextCodeFetchFailed)
}

// rowsFromTable maps a header row plus records onto Rows. Header names are
// trimmed; blank header cells drop their column.
func rowsFromTable(table [][]string) ([]routes.Row, error) {
	if len(table) == 0 {
		return []routes.Row{}, nil
	}
	header := make([]string, len(table[0]))
	seen := map[string]struct{}{}
	for i, name := range table[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, name)
		}
		seen[name] = struct{}{}
	}

	rows := make([]routes.Row, 0, len(table)-1)
	for _, record := range table[1:] {
		row := make(routes.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
