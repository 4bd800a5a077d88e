// Package lookup holds the country and animal alias tables used to derive
// route slugs and display glyphs.
package lookup

import (
	"maps"

	"github.com/goliatone/go-petpassport/internal/textnorm"
)

const (
	// DefaultFlag is returned for countries missing from the flag table.
	DefaultFlag = "🌍"
	// DefaultAnimalGlyph is returned for animals missing from the glyph table.
	DefaultAnimalGlyph = "🐾"
)

// Tables groups the alias tables. Keys are stored in textnorm.Key form.
// A Tables value is read-only once built.
type Tables struct {
	countries map[string]string
	flags     map[string]string
	animals   map[string]string
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return NewTables(defaultCountries, defaultFlags, defaultAnimals)
}

// NewTables builds tables from the supplied maps. Keys are normalized and the
// maps are copied, so later changes to the arguments have no effect.
func NewTables(countries, flags, animals map[string]string) Tables {
	return Tables{
		countries: normalizeKeys(countries),
		flags:     normalizeKeys(flags),
		animals:   normalizeKeys(animals),
	}
}

// WithOverrides returns a copy of t with extra country aliases merged in.
func (t Tables) WithOverrides(countries map[string]string) Tables {
	merged := maps.Clone(t.countries)
	if merged == nil {
		merged = map[string]string{}
	}
	maps.Copy(merged, normalizeKeys(countries))
	return Tables{countries: merged, flags: t.flags, animals: t.animals}
}

// CanonicalCountry resolves a country alias. Names missing from the table
// degrade to their own lookup key.
func (t Tables) CanonicalCountry(name string) string {
	key := textnorm.Key(name)
	if canonical, ok := t.countries[key]; ok {
		return canonical
	}
	return key
}

// Flag returns the flag glyph for a country name.
func (t Tables) Flag(name string) string {
	if flag, ok := t.flags[textnorm.Key(name)]; ok {
		return flag
	}
	return DefaultFlag
}

// AnimalGlyph returns the glyph for an animal name.
func (t Tables) AnimalGlyph(name string) string {
	if glyph, ok := t.animals[textnorm.Key(name)]; ok {
		return glyph
	}
	return DefaultAnimalGlyph
}

// BuildSlug derives the canonical route slug
// {origin}-to-{destination}-{animal}.
func (t Tables) BuildSlug(origin, destination, animal string) string {
	return textnorm.Slugify(t.CanonicalCountry(origin)) +
		"-to-" + textnorm.Slugify(t.CanonicalCountry(destination)) +
		"-" + textnorm.Slugify(animal)
}

func normalizeKeys(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for key, value := range src {
		if k := textnorm.Key(key); k != "" {
			out[k] = value
		}
	}
	return out
}
