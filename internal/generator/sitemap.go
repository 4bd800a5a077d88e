package generator

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const (
	sitemapDateLayout   = "2006-01-02"
	rootPriority        = "1.0"
	routePriority       = "0.8"
	routeChangeFreq     = "monthly"
	sitemapXMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

type sitemapEntry struct {
	Location   string
	LastMod    string
	Priority   string
	ChangeFreq string
}

// EmitSitemap renders the sitemap for slugs: the site root first, then one
// entry per slug in the given order. Duplicated slugs produce duplicated
// entries.
func EmitSitemap(slugs []string, domain string, today time.Time) string {
	base := strings.TrimRight(strings.TrimSpace(domain), "/")
	lastMod := today.Format(sitemapDateLayout)

	entries := make([]sitemapEntry, 0, len(slugs)+1)
	entries = append(entries, sitemapEntry{
		Location: base + "/",
		LastMod:  lastMod,
		Priority: rootPriority,
	})
	for _, slug := range slugs {
		entries = append(entries, sitemapEntry{
			Location:   base + "/" + RemotePagePath(slug),
			LastMod:    lastMod,
			ChangeFreq: routeChangeFreq,
			Priority:   routePriority,
		})
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="` + sitemapXMLNamespace + `">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXMLText(entry.Location)))
		builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod))
		if entry.ChangeFreq != "" {
			builder.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", entry.ChangeFreq))
		}
		builder.WriteString(fmt.Sprintf("    <priority>%s</priority>\n", entry.Priority))
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>`)
	return builder.String()
}

func escapeXMLText(value string) string {
	var builder strings.Builder
	if err := xml.EscapeText(&builder, []byte(value)); err != nil {
		return value
	}
	return builder.String()
}

func buildRobots(baseURL string, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if base == "" {
			base = "http://localhost"
		}
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s/%s\n", base, SitemapFileName))
	}
	return builder.String()
}
