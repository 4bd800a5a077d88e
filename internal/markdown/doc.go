// Package markdown reads route files written as Markdown with YAML front
// matter and renders detailed requirement text through goldmark.
package markdown
