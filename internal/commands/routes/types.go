package routescmd

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-petpassport/internal/generator"
	"github.com/goliatone/go-petpassport/internal/publisher"
)

const (
	generateMessageType = "petpassport.routes.generate"
	publishMessageType  = "petpassport.routes.publish"
	syncMessageType     = "petpassport.routes.sync"
	sitemapMessageType  = "petpassport.routes.sitemap"
)

var (
	domainPattern = regexp.MustCompile(`^https?://[^\s/]+`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// ResultCallback receives the outcome of a routes command. It is optional and
// invoked synchronously by the handler, including when the command fails
// part-way.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries the build and publish results a command produced.
type ResultEnvelope struct {
	Build    *generator.BuildResult
	Publish  *publisher.Result
	Metadata map[string]any
}

// GenerateRoutesCommand fetches the rows and renders every route page plus
// routes.json and sitemap.xml.
type GenerateRoutesCommand struct {
	DryRun         bool           `json:"dry_run,omitempty"`
	RunID          string         `json:"run_id,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (GenerateRoutesCommand) Type() string { return generateMessageType }

// Validate ensures the optional run id is a UUID.
func (m GenerateRoutesCommand) Validate() error {
	return validateRunID(m.RunID, "petpassport.routes.generate.run_id_invalid")
}

// PublishRoutesCommand uploads previously generated artifacts. When Slugs is
// empty the slug list is read from routes.json.
type PublishRoutesCommand struct {
	Slugs          []string       `json:"slugs,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (PublishRoutesCommand) Type() string { return publishMessageType }

// Validate rejects blank slugs and anything that is not a route slug.
func (m PublishRoutesCommand) Validate() error {
	errs := validation.Errors{}
	for _, slug := range m.Slugs {
		trimmed := strings.TrimSpace(slug)
		if trimmed == "" {
			errs["slugs"] = validation.NewError("petpassport.routes.publish.slug_invalid", "slugs must not contain empty values")
			break
		}
		if !slugPattern.MatchString(trimmed) {
			errs["slugs"] = validation.NewError("petpassport.routes.publish.slug_invalid", "slugs may only contain a-z, 0-9 and '-'")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SyncRoutesCommand generates and then publishes in one run.
type SyncRoutesCommand struct {
	DryRun         bool           `json:"dry_run,omitempty"`
	SkipPublish    bool           `json:"skip_publish,omitempty"`
	RunID          string         `json:"run_id,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (SyncRoutesCommand) Type() string { return syncMessageType }

// Validate ensures the optional run id is a UUID.
func (m SyncRoutesCommand) Validate() error {
	return validateRunID(m.RunID, "petpassport.routes.sync.run_id_invalid")
}

// RefreshSitemapCommand rewrites sitemap.xml from the current routes.json.
type RefreshSitemapCommand struct {
	// Domain overrides the configured site domain.
	Domain         string         `json:"domain,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RefreshSitemapCommand) Type() string { return sitemapMessageType }

// Validate ensures an overriding domain is an absolute http(s) URL.
func (m RefreshSitemapCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Domain, validation.Match(domainPattern).
			Error("domain must be an absolute http(s) url")),
	)
}

func validateRunID(runID, code string) error {
	trimmed := strings.TrimSpace(runID)
	if trimmed == "" {
		return nil
	}
	if _, err := uuid.Parse(trimmed); err != nil {
		return validation.Errors{
			"run_id": validation.NewError(code, "run_id must be a uuid"),
		}
	}
	return nil
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
