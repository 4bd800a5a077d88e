package lookup

import "testing"

func TestBuildSlug(t *testing.T) {
	tables := DefaultTables()

	cases := []struct {
		origin, destination, animal string
		want                        string
	}{
		{"United Kingdom", "Brazil", "Dog", "uk-to-brazil-dog"},
		{"Brasil", "Japão", "Cat", "brazil-to-japan-cat"},
		{"méxico", "New Zealand", "Bird", "mexico-to-new-zealand-bird"},
		{"Atlantis", "Portugal", "Guinea Pig", "atlantis-to-portugal-guinea-pig"},
	}
	for _, tc := range cases {
		if got := tables.BuildSlug(tc.origin, tc.destination, tc.animal); got != tc.want {
			t.Fatalf("BuildSlug(%q, %q, %q): expected %q, got %q", tc.origin, tc.destination, tc.animal, tc.want, got)
		}
	}
}

func TestCanonicalCountryFallsBackToKey(t *testing.T) {
	tables := DefaultTables()
	if got := tables.CanonicalCountry("  Österreich "); got != "osterreich" {
		t.Fatalf("expected normalized key fallback, got %q", got)
	}
	if got := tables.CanonicalCountry("Great Britain"); got != "uk" {
		t.Fatalf("expected uk, got %q", got)
	}
}

func TestFlagIsAliasInsensitive(t *testing.T) {
	tables := DefaultTables()
	if tables.Flag("Brasil") != tables.Flag("brazil") {
		t.Fatalf("expected Brasil and brazil to share a flag")
	}
	if got := tables.Flag("MÉXICO"); got != "🇲🇽" {
		t.Fatalf("expected Mexican flag, got %q", got)
	}
	if got := tables.Flag("Atlantis"); got != DefaultFlag {
		t.Fatalf("expected default flag, got %q", got)
	}
}

func TestAnimalGlyph(t *testing.T) {
	tables := DefaultTables()
	if got := tables.AnimalGlyph(" Dog "); got != "🐕" {
		t.Fatalf("expected dog glyph, got %q", got)
	}
	if got := tables.AnimalGlyph("Ferret"); got != DefaultAnimalGlyph {
		t.Fatalf("expected default glyph, got %q", got)
	}
}

func TestWithOverridesDoesNotMutateOriginal(t *testing.T) {
	base := DefaultTables()
	extended := base.WithOverrides(map[string]string{"Holland": "netherlands"})

	if got := extended.CanonicalCountry("holland"); got != "netherlands" {
		t.Fatalf("expected override, got %q", got)
	}
	if got := base.CanonicalCountry("holland"); got != "holland" {
		t.Fatalf("expected base tables untouched, got %q", got)
	}
}

func TestNewTablesCopiesInput(t *testing.T) {
	src := map[string]string{"dog": "D"}
	tables := NewTables(nil, nil, src)
	src["dog"] = "X"
	if got := tables.AnimalGlyph("dog"); got != "D" {
		t.Fatalf("expected copied table, got %q", got)
	}
}
