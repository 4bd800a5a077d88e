// Package render turns a derived route into its HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-petpassport/internal/affiliate"
	"github.com/goliatone/go-petpassport/internal/lookup"
	"github.com/goliatone/go-petpassport/internal/markdown"
	"github.com/goliatone/go-petpassport/internal/routes"
)

//go:embed templates/route.html
var templateFS embed.FS

const routeTemplate = "route.html"

// Disclaimer replaces the detailed requirements when a route has none.
const Disclaimer = "Please verify detailed requirements with the official veterinary authority of the destination country before traveling."

// minChecklistItem is the number of characters a checklist fragment must
// exceed to be kept.
const minChecklistItem = 6

var checklistSeparators = regexp.MustCompile(`[·\n]+`)

// DetailedFormat selects how detailed requirements are rendered.
type DetailedFormat string

const (
	DetailedText     DetailedFormat = "text"
	DetailedMarkdown DetailedFormat = "markdown"
)

// Options configures a Renderer.
type Options struct {
	DetailedFormat DetailedFormat
}

// Page is the data rendered for a single route.
type Page struct {
	Route routes.Route
	Links affiliate.Links
	// GeneratedAt drives the footer year.
	GeneratedAt time.Time
}

// Renderer renders route pages from the embedded template.
type Renderer struct {
	tables   lookup.Tables
	tpl      *template.Template
	format   DetailedFormat
	markdown *markdown.Parser
}

type pageView struct {
	Slug            string
	Origin          string
	Destination     string
	Animal          string
	AnimalLower     string
	OriginFlag      string
	DestinationFlag string
	AnimalGlyph     string
	Checklist       []string
	Detailed        template.HTML
	ShoppingURL     string
	LodgingURL      string
	Year            int
}

// New parses the page template.
func New(tables lookup.Tables, opts Options) (*Renderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/"+routeTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: parse template: %w", err)
	}
	r := &Renderer{tables: tables, tpl: tpl, format: opts.DetailedFormat}
	switch r.format {
	case "", DetailedText:
		r.format = DetailedText
	case DetailedMarkdown:
		r.markdown = markdown.NewParser(markdown.ParseOptions{SafeMode: true})
	default:
		return nil, fmt.Errorf("render: unsupported detailed format %q", opts.DetailedFormat)
	}
	return r, nil
}

// Render returns the complete HTML document for page.
func (r *Renderer) Render(page Page) ([]byte, error) {
	rec := page.Route.Record
	detailed, err := r.detailedHTML(rec.RequirementsDetailed)
	if err != nil {
		return nil, err
	}

	year := page.GeneratedAt.Year()
	if page.GeneratedAt.IsZero() {
		year = time.Now().Year()
	}

	view := pageView{
		Slug:            page.Route.Slug,
		Origin:          rec.Origin,
		Destination:     rec.Destination,
		Animal:          rec.Animal,
		AnimalLower:     strings.ToLower(rec.Animal),
		OriginFlag:      r.tables.Flag(rec.Origin),
		DestinationFlag: r.tables.Flag(rec.Destination),
		AnimalGlyph:     r.tables.AnimalGlyph(rec.Animal),
		Checklist:       Checklist(rec.RequirementsBrief),
		Detailed:        detailed,
		ShoppingURL:     page.Links.Shopping,
		LodgingURL:      page.Links.Lodging,
		Year:            year,
	}

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, routeTemplate, view); err != nil {
		return nil, fmt.Errorf("render: execute template for %s: %w", page.Route.Slug, err)
	}
	return buf.Bytes(), nil
}

// Checklist splits brief requirements on middle dots and newlines and keeps
// the fragments longer than six characters. When nothing survives the raw
// text becomes the only item.
func Checklist(brief string) []string {
	var items []string
	for _, part := range checklistSeparators.Split(brief, -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) > minChecklistItem {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return []string{brief}
	}
	return items
}

func (r *Renderer) detailedHTML(detailed string) (template.HTML, error) {
	detailed = strings.TrimSpace(detailed)
	if detailed == "" {
		return template.HTML(`<p style="opacity:.6;font-style:italic">` + Disclaimer + `</p>`), nil
	}
	if r.format == DetailedMarkdown {
		out, err := r.markdown.Parse([]byte(detailed))
		if err != nil {
			return "", fmt.Errorf("render: detailed requirements: %w", err)
		}
		return template.HTML(out), nil
	}
	return template.HTML("<p>" + html.EscapeString(detailed) + "</p>"), nil
}
