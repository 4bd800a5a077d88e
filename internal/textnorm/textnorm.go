// Package textnorm turns free-form spreadsheet text into lookup keys and URL
// slugs.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s\p{Zs}-]`)
	whitespace = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// Normalize decomposes s (NFD) and drops combining marks. The result is not
// recomposed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Key is the lookup form of s: trimmed, lower-cased and normalized.
func Key(s string) string {
	return Normalize(strings.ToLower(strings.TrimSpace(s)))
}

// Slugify returns the URL-safe form of s. Characters outside [a-z0-9] are
// dropped, except whitespace runs which become a single hyphen.
func Slugify(s string) string {
	out := Key(s)
	out = disallowed.ReplaceAllString(out, "")
	return whitespace.ReplaceAllString(out, "-")
}
