package affiliate

import (
	"net/url"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := map[string]Region{
		"Brazil":         RegionBrazil,
		" brasil ":       RegionBrazil,
		"UK":             RegionUK,
		"United Kingdom": RegionUK,
		"united-kingdom": RegionUK,
		"England":        RegionUK,
		"France":         RegionDefault,
		"Great Britain":  RegionDefault,
		"":               RegionDefault,
	}
	for origin, want := range cases {
		if got := Classify(origin); got != want {
			t.Fatalf("Classify(%q): expected %v, got %v", origin, want, got)
		}
	}
}

func TestShoppingURLByRegion(t *testing.T) {
	b := NewBuilder(DefaultConfig())

	cases := []struct {
		origin   string
		wantHost string
		wantTag  string
	}{
		{"Brazil", "amazon.com.br", "tag=petpassport04-20"},
		{"UK", "amazon.co.uk", "tag=petpassportuk-21"},
		{"France", "www.amazon.com/", "tag=petpasspor03c-20"},
	}
	for _, tc := range cases {
		got := b.ShoppingURL(tc.origin, "Dog")
		if !strings.Contains(got, tc.wantHost) {
			t.Fatalf("ShoppingURL(%q): expected host %q in %q", tc.origin, tc.wantHost, got)
		}
		if !strings.HasSuffix(got, tc.wantTag) {
			t.Fatalf("ShoppingURL(%q): expected %q in %q", tc.origin, tc.wantTag, got)
		}
	}
}

func TestShoppingURLExactForm(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	want := "https://www.amazon.com.br/s?k=pet+travel+dog+carrier+accessories&tag=petpassport04-20"
	if got := b.ShoppingURL("Brasil", "Dog"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLodgingURL(t *testing.T) {
	b := NewBuilder(Config{BookingAID: "12345"})
	want := "https://www.booking.com/search.html?ss=New+Zealand&aid=12345&label=petpassport-new-zealand"
	if got := b.LodgingURL("New Zealand"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLodgingURLEscapesDestination(t *testing.T) {
	b := NewBuilder(Config{BookingAID: "12345"})
	got := b.LodgingURL("Trinidad & Tobago")
	want := "https://www.booking.com/search.html?ss=Trinidad+%26+Tobago&aid=12345&label=petpassport-trinidad-tobago"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse lodging url: %v", err)
	}
	query := parsed.Query()
	if query.Get("ss") != "Trinidad & Tobago" || query.Get("aid") != "12345" {
		t.Fatalf("unexpected query %v", query)
	}
}

func TestLinks(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	links := b.Links("England", "Portugal", "Cat")
	if links.Region != RegionUK {
		t.Fatalf("expected UK region, got %v", links.Region)
	}
	if !strings.Contains(links.Shopping, "amazon.co.uk") {
		t.Fatalf("unexpected shopping url %q", links.Shopping)
	}
	if !strings.Contains(links.Lodging, "ss=Portugal") {
		t.Fatalf("unexpected lodging url %q", links.Lodging)
	}
}

func TestURLsAreTotalOnEmptyInput(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	if got := b.ShoppingURL("", ""); !strings.HasPrefix(got, "https://www.amazon.com/s?k=pet+travel++carrier") {
		t.Fatalf("unexpected url for empty input %q", got)
	}
	if got := b.LodgingURL(""); !strings.HasSuffix(got, "label=petpassport-") {
		t.Fatalf("unexpected url for empty input %q", got)
	}
}
