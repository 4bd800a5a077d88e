// Package affiliate builds the marketplace and lodging links embedded in each
// route page.
package affiliate

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-petpassport/internal/textnorm"
)

// Region is the marketplace bucket an origin country falls into.
type Region int

const (
	RegionDefault Region = iota
	RegionBrazil
	RegionUK
)

func (r Region) String() string {
	switch r {
	case RegionBrazil:
		return "brazil"
	case RegionUK:
		return "uk"
	default:
		return "default"
	}
}

type bucket struct {
	host string
	tag  func(Config) string
}

var buckets = map[Region]bucket{
	RegionBrazil:  {host: "www.amazon.com.br", tag: func(c Config) string { return c.AmazonBRTag }},
	RegionUK:      {host: "www.amazon.co.uk", tag: func(c Config) string { return c.AmazonUKTag }},
	RegionDefault: {host: "www.amazon.com", tag: func(c Config) string { return c.AmazonUSTag }},
}

var regionAliases = map[string]Region{
	"brazil":         RegionBrazil,
	"brasil":         RegionBrazil,
	"uk":             RegionUK,
	"united-kingdom": RegionUK,
	"united kingdom": RegionUK,
	"england":        RegionUK,
}

// Classify maps an origin country onto its region bucket. Unknown origins use
// RegionDefault.
func Classify(origin string) Region {
	if region, ok := regionAliases[textnorm.Key(origin)]; ok {
		return region
	}
	return RegionDefault
}

// Config carries the affiliate identifiers.
type Config struct {
	AmazonBRTag string
	AmazonUSTag string
	AmazonUKTag string
	BookingAID  string
}

// DefaultConfig returns the production affiliate identifiers.
func DefaultConfig() Config {
	return Config{
		AmazonBRTag: "petpassport04-20",
		AmazonUSTag: "petpasspor03c-20",
		AmazonUKTag: "petpassportuk-21",
		BookingAID:  "seu-aid-booking",
	}
}

// Links is the pair of affiliate URLs rendered on a route page.
type Links struct {
	Region   Region
	Shopping string
	Lodging  string
}

// Builder derives affiliate URLs. It is safe for concurrent use.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Links builds both URLs for a route.
func (b *Builder) Links(origin, destination, animal string) Links {
	return Links{
		Region:   Classify(origin),
		Shopping: b.ShoppingURL(origin, animal),
		Lodging:  b.LodgingURL(destination),
	}
}

// ShoppingURL returns the marketplace search URL for the origin's region,
// tagged with that region's affiliate id.
func (b *Builder) ShoppingURL(origin, animal string) string {
	bk := buckets[Classify(origin)]
	query := "pet+travel+" + url.QueryEscape(strings.ToLower(animal)) + "+carrier+accessories"
	return "https://" + bk.host + "/s?k=" + query + "&tag=" + url.QueryEscape(bk.tag(b.cfg))
}

// LodgingURL returns the lodging search URL for a destination. The campaign
// label carries the destination slug.
func (b *Builder) LodgingURL(destination string) string {
	return "https://www.booking.com/search.html" +
		"?ss=" + url.QueryEscape(destination) +
		"&aid=" + url.QueryEscape(b.cfg.BookingAID) +
		"&label=petpassport-" + textnorm.Slugify(destination)
}
