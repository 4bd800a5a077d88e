package routes

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-petpassport/internal/lookup"
	"github.com/goliatone/go-petpassport/internal/textnorm"
)

// SlugSource reports where a route slug came from.
type SlugSource string

const (
	SlugDerived  SlugSource = "derived"
	SlugOverride SlugSource = "override"
)

// Route is a record that passed validation, with its resolved slug.
type Route struct {
	Record
	Slug       string
	SlugSource SlugSource
}

// Decision is the outcome of deriving one record: either a Route or a skip
// with the reason.
type Decision struct {
	Route   Route
	Skipped bool
	Reason  string
	// InvalidOverride is set when the slug override was not a URL slug. The
	// route then uses the normalized override, or the derived slug when
	// nothing usable remains.
	InvalidOverride bool
}

// Deriver validates records and resolves their slugs.
type Deriver struct {
	tables lookup.Tables
}

// NewDeriver returns a Deriver backed by tables.
func NewDeriver(tables lookup.Tables) *Deriver {
	return &Deriver{tables: tables}
}

// Derive validates rec and resolves its slug. Records without an origin or a
// destination are skipped; this is never an error.
func (d *Deriver) Derive(rec Record) Decision {
	rec.Origin = strings.TrimSpace(rec.Origin)
	rec.Destination = strings.TrimSpace(rec.Destination)
	rec.Animal = strings.TrimSpace(rec.Animal)

	if err := validateRecord(rec); err != nil {
		return Decision{Route: Route{Record: rec}, Skipped: true, Reason: err.Error()}
	}

	route := Route{Record: rec}
	decision := Decision{}
	if override := strings.ToLower(strings.TrimSpace(rec.SlugOverride)); override != "" {
		if slug.IsValid(override) {
			route.Slug = override
			route.SlugSource = SlugOverride
			decision.Route = route
			return decision
		}
		decision.InvalidOverride = true
		if normalized, err := slug.Normalize(textnorm.Normalize(override)); err == nil {
			route.Slug = normalized
			route.SlugSource = SlugOverride
			decision.Route = route
			return decision
		}
	}

	route.Slug = d.tables.BuildSlug(rec.Origin, rec.Destination, rec.Animal)
	route.SlugSource = SlugDerived
	decision.Route = route
	return decision
}

func validateRecord(rec Record) error {
	err := validation.ValidateStruct(&rec,
		validation.Field(&rec.Origin, validation.Required.Error("origin is required")),
		validation.Field(&rec.Destination, validation.Required.Error("destination is required")),
	)
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return errs.Filter()
	}
	return err
}
