// Package routes turns spreadsheet rows into validated route records with a
// canonical slug.
package routes

import (
	"strings"
)

// Column names expected in the source sheet.
const (
	ColumnOrigin      = "Origin"
	ColumnDestination = "Destination"
	ColumnAnimal      = "Animal"
	ColumnBrief       = "Requirements (Breve)"
	ColumnDetailed    = "Detailed_Requirements"
	ColumnSlug        = "Slug"
)

// DefaultBrief is used when a row carries no brief requirements.
const DefaultBrief = "No requirements found."

// Row is one source row keyed by column name.
type Row map[string]string

// Record is one route entry read from the source.
type Record struct {
	Index                int    `json:"index"`
	Origin               string `json:"origin"`
	Destination          string `json:"destination"`
	Animal               string `json:"animal"`
	RequirementsBrief    string `json:"requirements_brief"`
	RequirementsDetailed string `json:"requirements_detailed"`
	SlugOverride         string `json:"slug,omitempty"`
}

// FromRow builds a Record from a source row. index is the 1-based data row
// number used in log entries.
func FromRow(index int, row Row) Record {
	brief := strings.TrimSpace(row[ColumnBrief])
	if brief == "" {
		brief = DefaultBrief
	}
	return Record{
		Index:                index,
		Origin:               strings.TrimSpace(row[ColumnOrigin]),
		Destination:          strings.TrimSpace(row[ColumnDestination]),
		Animal:               strings.TrimSpace(row[ColumnAnimal]),
		RequirementsBrief:    brief,
		RequirementsDetailed: strings.TrimSpace(row[ColumnDetailed]),
		SlugOverride:         strings.TrimSpace(row[ColumnSlug]),
	}
}

// FromRows converts rows in order.
func FromRows(rows []Row) []Record {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		records = append(records, FromRow(i+1, row))
	}
	return records
}
