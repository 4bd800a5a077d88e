package markdown

import (
	"strings"
	"testing"
)

func TestParserRendersMarkdown(t *testing.T) {
	p := NewParser(ParseOptions{SafeMode: true})
	out, err := p.Parse([]byte("**Rabies** vaccine at least 21 days before travel"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(out), "<strong>Rabies</strong>") {
		t.Fatalf("expected bold markup, got %q", out)
	}
}

func TestParserSafeModeDropsRawHTML(t *testing.T) {
	p := NewParser(ParseOptions{SafeMode: true})
	out, err := p.Parse([]byte("before <script>alert(1)</script> after"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Fatalf("expected raw html to be omitted, got %q", out)
	}
}

func TestParserRendersGFMTables(t *testing.T) {
	p := NewParser(ParseOptions{Extensions: []string{"table", "TABLE", "unknown"}})
	out, err := p.Parse([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(out), "<table>") {
		t.Fatalf("expected table markup, got %q", out)
	}
}

func TestParseRouteDocument(t *testing.T) {
	src := []byte(`---
origin: United Kingdom
destination: Brazil
animal: Dog
requirements: "Microchip · Rabies vaccine · Health certificate"
slug: uk-brazil-dog
---

## Before you fly

Book the vet visit early.
`)
	meta, body, err := ParseRouteDocument(src)
	if err != nil {
		t.Fatalf("ParseRouteDocument: %v", err)
	}
	if meta.Origin != "United Kingdom" || meta.Destination != "Brazil" || meta.Animal != "Dog" {
		t.Fatalf("unexpected front matter %#v", meta)
	}
	if meta.Slug != "uk-brazil-dog" {
		t.Fatalf("expected slug, got %q", meta.Slug)
	}
	if !strings.HasPrefix(string(body), "## Before you fly") {
		t.Fatalf("unexpected body %q", body)
	}
}
