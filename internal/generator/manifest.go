package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".petpassport-manifest.json"
	manifestFileVersion = 1
)

// EmitManifest encodes slugs as the routes.json document: an indented JSON
// array in input order with duplicates kept and non-ASCII text left as is.
func EmitManifest(slugs []string) ([]byte, error) {
	if slugs == nil {
		slugs = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(slugs); err != nil {
		return nil, fmt.Errorf("generator: encode routes manifest: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParseManifest decodes a routes.json document back into its slug list.
func ParseManifest(data []byte) ([]string, error) {
	var slugs []string
	if err := json.Unmarshal(data, &slugs); err != nil {
		return nil, fmt.Errorf("generator: parse routes manifest: %w", err)
	}
	if slugs == nil {
		slugs = []string{}
	}
	return slugs, nil
}

// buildManifest records what the previous build produced so the next one can
// report which pages changed.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	RunID       string                   `json:"run_id,omitempty"`
	Routes      map[string]manifestRoute `json:"routes"`
}

type manifestRoute struct {
	RouteID    string    `json:"route_id"`
	Slug       string    `json:"slug"`
	Output     string    `json:"output"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Routes:  map[string]manifestRoute{},
	}
}

func parseBuildManifest(data []byte) (*buildManifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return newBuildManifest(), nil
	}
	var stored struct {
		Version     int             `json:"version"`
		GeneratedAt time.Time       `json:"generated_at"`
		RunID       string          `json:"run_id"`
		Routes      []manifestRoute `json:"routes"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	manifest := newBuildManifest()
	if stored.Version != 0 {
		manifest.Version = stored.Version
	}
	manifest.GeneratedAt = stored.GeneratedAt
	manifest.RunID = stored.RunID
	for _, entry := range stored.Routes {
		manifest.setRoute(entry)
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	// Stable ordering for deterministic output.
	ordered := struct {
		Version     int             `json:"version"`
		GeneratedAt time.Time       `json:"generated_at"`
		RunID       string          `json:"run_id,omitempty"`
		Routes      []manifestRoute `json:"routes"`
	}{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
		RunID:       m.RunID,
		Routes:      make([]manifestRoute, 0, len(m.Routes)),
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	for _, entry := range m.Routes {
		ordered.Routes = append(ordered.Routes, entry)
	}
	sort.Slice(ordered.Routes, func(i, j int) bool {
		return ordered.Routes[i].Slug < ordered.Routes[j].Slug
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func (m *buildManifest) routeKey(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func (m *buildManifest) lookupRoute(slug string) (manifestRoute, bool) {
	if m == nil || len(m.Routes) == 0 {
		return manifestRoute{}, false
	}
	entry, ok := m.Routes[m.routeKey(slug)]
	return entry, ok
}

func (m *buildManifest) setRoute(entry manifestRoute) {
	if m == nil {
		return
	}
	if m.Routes == nil {
		m.Routes = map[string]manifestRoute{}
	}
	m.Routes[m.routeKey(entry.Slug)] = entry
}

// changed reports whether slug rendered to a different checksum or output
// than last time. Unknown slugs count as changed.
func (m *buildManifest) changed(slug, checksum, output string) bool {
	entry, ok := m.lookupRoute(slug)
	if !ok {
		return true
	}
	return entry.Checksum != checksum || strings.TrimSpace(entry.Output) != strings.TrimSpace(output)
}
