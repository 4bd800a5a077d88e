package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// RouteFrontMatter is the metadata block of a route Markdown file.
type RouteFrontMatter struct {
	Origin       string `yaml:"origin"`
	Destination  string `yaml:"destination"`
	Animal       string `yaml:"animal"`
	Requirements string `yaml:"requirements"`
	Slug         string `yaml:"slug"`
	Draft        bool   `yaml:"draft"`
}

// ParseRouteDocument splits a route file into its front matter and the
// Markdown body holding the detailed requirements.
func ParseRouteDocument(source []byte) (RouteFrontMatter, []byte, error) {
	var meta RouteFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return RouteFrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, bytes.TrimSpace(body), nil
}
