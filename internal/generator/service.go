package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-petpassport/internal/affiliate"
	"github.com/goliatone/go-petpassport/internal/identity"
	"github.com/goliatone/go-petpassport/internal/logging"
	"github.com/goliatone/go-petpassport/internal/render"
	"github.com/goliatone/go-petpassport/internal/routes"
	"github.com/goliatone/go-petpassport/pkg/interfaces"
)

var (
	errDeriverRequired  = errors.New("generator: route deriver is required")
	errRendererRequired = errors.New("generator: page renderer is required")
	errLinksRequired    = errors.New("generator: affiliate link builder is required")
)

// Service describes the route site generator contract.
type Service interface {
	Build(ctx context.Context, records []routes.Record, opts BuildOptions) (*BuildResult, error)
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	// RootDir receives routes.json, sitemap.xml and robots.txt.
	RootDir string
	// OutputDir holds the route pages, relative to RootDir.
	OutputDir      string
	SiteDomain     string
	GenerateRobots bool
	// TrackChanges keeps a build manifest in OutputDir so each run reports
	// how many pages differ from the previous one.
	TrackChanges bool
}

const defaultOutputDir = "routes"

func (cfg Config) withDefaults() Config {
	if strings.TrimSpace(cfg.RootDir) == "" {
		cfg.RootDir = "."
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = defaultOutputDir
	}
	cfg.OutputDir = strings.Trim(strings.TrimSpace(cfg.OutputDir), "/")
	cfg.SiteDomain = strings.TrimRight(strings.TrimSpace(cfg.SiteDomain), "/")
	return cfg
}

// BuildOptions narrows the behaviour of a single run.
type BuildOptions struct {
	DryRun bool
	RunID  string
}

// OutcomeStatus classifies what happened to one record.
type OutcomeStatus string

const (
	OutcomeBuilt   OutcomeStatus = "built"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// RouteDiagnostic captures the outcome of one record.
type RouteDiagnostic struct {
	Row      int
	Slug     string
	Status   OutcomeStatus
	Reason   string
	Output   string
	Changed  bool
	Duration time.Duration
	Err      error
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	RunID         string
	RoutesBuilt   int
	RoutesSkipped int
	RoutesFailed  int
	RoutesChanged int
	// Slugs lists the written pages in input order, duplicates kept.
	Slugs []string
	// Collisions lists slugs written more than once in this run.
	Collisions  []string
	Artifacts   []Artifact
	Diagnostics []RouteDiagnostic
	Errors      []error
	Duration    time.Duration
	DryRun      bool
}

// PageRenderer renders one route page.
type PageRenderer interface {
	Render(page render.Page) ([]byte, error)
}

// LinkBuilder produces the affiliate links for a route.
type LinkBuilder interface {
	Links(origin, destination, animal string) affiliate.Links
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Deriver  *routes.Deriver
	Links    LinkBuilder
	Renderer PageRenderer
	Storage  Storage
	Logger   interfaces.Logger
	Now      func() time.Time
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		cfg:    cfg.withDefaults(),
		deps:   deps,
		logger: logging.OrNoOp(deps.Logger),
		now:    now,
	}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

type routeOutcome struct {
	diagnostic RouteDiagnostic
	artifact   Artifact
	checksum   string
}

func (s *service) Build(ctx context.Context, records []routes.Record, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case s.deps.Deriver == nil:
		return nil, errDeriverRequired
	case s.deps.Renderer == nil:
		return nil, errRendererRequired
	case s.deps.Links == nil:
		return nil, errLinksRequired
	}

	start := time.Now()
	generatedAt := s.now()
	runID := strings.TrimSpace(opts.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := logging.WithRunID(s.logger, runID)

	result := &BuildResult{
		RunID:       runID,
		DryRun:      opts.DryRun,
		Slugs:       make([]string, 0, len(records)),
		Diagnostics: make([]RouteDiagnostic, 0, len(records)),
	}

	var (
		errorsSlice []error
		writer      = newArtifactWriter(s.deps.Storage, opts.DryRun)
		dirCache    = map[string]struct{}{}
		seen        = map[string]int{}
		pages       []Artifact
	)

	previous := newBuildManifest()
	if s.cfg.TrackChanges {
		loaded, err := s.loadManifest(ctx)
		if err != nil {
			logger.Warn("generator.manifest.unreadable", "error", err)
		} else {
			previous = loaded
		}
	}

	collect := func(outcome routeOutcome) {
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		switch outcome.diagnostic.Status {
		case OutcomeSkipped:
			result.RoutesSkipped++
		case OutcomeFailed:
			result.RoutesFailed++
			if outcome.diagnostic.Err != nil {
				errorsSlice = append(errorsSlice, outcome.diagnostic.Err)
			}
		case OutcomeBuilt:
			result.RoutesBuilt++
			result.Slugs = append(result.Slugs, outcome.diagnostic.Slug)
			pages = append(pages, outcome.artifact)
			if outcome.diagnostic.Changed {
				result.RoutesChanged++
			}
		}
	}

	if err := ensureDir(ctx, writer, dirCache, s.cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("generator: prepare output dir: %w", err)
	}

	next := newBuildManifest()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			result.Errors = append(errorsSlice, err)
			result.Duration = time.Since(start)
			return result, err
		}
		outcome := s.buildRoute(ctx, writer, dirCache, logger, rec, generatedAt, previous)
		if outcome.diagnostic.Status == OutcomeBuilt {
			slug := outcome.diagnostic.Slug
			seen[slug]++
			if seen[slug] == 2 {
				result.Collisions = append(result.Collisions, slug)
				logger.Warn("generator.route.collision", "slug", slug, "row", rec.Index)
			}
			next.setRoute(manifestRoute{
				RouteID:    identity.RouteUUID(slug).String(),
				Slug:       slug,
				Output:     outcome.artifact.LocalPath,
				Checksum:   outcome.checksum,
				RenderedAt: generatedAt,
			})
		}
		collect(outcome)
	}

	siteArtifacts, err := s.writeSiteFiles(ctx, writer, result.Slugs, generatedAt)
	if err != nil {
		errorsSlice = append(errorsSlice, err)
	}
	result.Artifacts = append(siteArtifacts, pages...)

	if s.cfg.TrackChanges && !opts.DryRun && err == nil {
		next.GeneratedAt = generatedAt
		next.RunID = runID
		if err := s.persistManifest(ctx, writer, next); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	logger.Info("generator.build.complete",
		"built", result.RoutesBuilt,
		"skipped", result.RoutesSkipped,
		"failed", result.RoutesFailed,
		"changed", result.RoutesChanged,
		"dry_run", opts.DryRun,
	)

	result.Duration = time.Since(start)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

func (s *service) buildRoute(
	ctx context.Context,
	writer artifactWriter,
	dirCache map[string]struct{},
	logger interfaces.Logger,
	rec routes.Record,
	generatedAt time.Time,
	previous *buildManifest,
) routeOutcome {
	outcome := routeOutcome{diagnostic: RouteDiagnostic{Row: rec.Index}}

	decision := s.deps.Deriver.Derive(rec)
	if decision.Skipped {
		outcome.diagnostic.Status = OutcomeSkipped
		outcome.diagnostic.Reason = decision.Reason
		logging.WithRouteContext(logger, "", rec.Index).Info("generator.route.skipped", "reason", decision.Reason)
		return outcome
	}

	route := decision.Route
	routeLogger := logging.WithRouteContext(logger, route.Slug, rec.Index)
	outcome.diagnostic.Slug = route.Slug
	if decision.InvalidOverride {
		routeLogger.Warn("generator.route.slug_override_invalid", "override", route.SlugOverride)
	}

	start := time.Now()
	links := s.deps.Links.Links(route.Origin, route.Destination, route.Animal)
	html, err := s.deps.Renderer.Render(render.Page{Route: route, Links: links, GeneratedAt: generatedAt})
	outcome.diagnostic.Duration = time.Since(start)
	if err != nil {
		wrapped := fmt.Errorf("generator: render route %s (row %d): %w", route.Slug, rec.Index, err)
		outcome.diagnostic.Status = OutcomeFailed
		outcome.diagnostic.Err = wrapped
		routeLogger.Error("generator.route.render_failed", "error", err)
		return outcome
	}

	rel := s.cfg.pagePath(route.Slug)
	if err := ensureDir(ctx, writer, dirCache, path.Dir(rel)); err != nil {
		return failedWrite(outcome, routeLogger, rel, err)
	}
	checksum := computeHash(html)
	req := WriteRequest{
		Path:        rel,
		Content:     bytes.NewReader(html),
		Size:        int64(len(html)),
		Category:    CategoryPage,
		ContentType: "text/html; charset=utf-8",
		Checksum:    checksum,
		Metadata: map[string]string{
			"slug":        route.Slug,
			"slug_source": string(route.SlugSource),
			"region":      links.Region.String(),
		},
	}
	if err := writer.WriteFile(ctx, req); err != nil {
		return failedWrite(outcome, routeLogger, rel, err)
	}

	local := s.cfg.localPath(rel)
	outcome.diagnostic.Status = OutcomeBuilt
	outcome.diagnostic.Output = local
	outcome.diagnostic.Changed = previous.changed(route.Slug, checksum, local)
	outcome.checksum = checksum
	outcome.artifact = Artifact{
		Category:  CategoryPage,
		Slug:      route.Slug,
		LocalPath: local,
		RepoPath:  RemotePagePath(route.Slug),
		Checksum:  checksum,
	}
	routeLogger.Info("generator.route.written", "output", local, "shopping_url", truncate(links.Shopping, 50))
	return outcome
}

func failedWrite(outcome routeOutcome, logger interfaces.Logger, rel string, err error) routeOutcome {
	wrapped := fmt.Errorf("generator: write %s: %w", rel, err)
	outcome.diagnostic.Status = OutcomeFailed
	outcome.diagnostic.Err = wrapped
	logger.Error("generator.route.write_failed", "path", rel, "error", err)
	return outcome
}

// writeSiteFiles writes routes.json, sitemap.xml and the optional robots.txt
// and returns them as artifacts in publish order.
func (s *service) writeSiteFiles(ctx context.Context, writer artifactWriter, slugs []string, generatedAt time.Time) ([]Artifact, error) {
	manifestJSON, err := EmitManifest(slugs)
	if err != nil {
		return nil, err
	}
	files := []struct {
		name        string
		category    WriteCategory
		contentType string
		content     []byte
	}{
		{RoutesFileName, CategoryRoutes, "application/json", manifestJSON},
		{SitemapFileName, CategorySitemap, "application/xml", []byte(EmitSitemap(slugs, s.cfg.SiteDomain, generatedAt))},
	}
	if s.cfg.GenerateRobots {
		files = append(files, struct {
			name        string
			category    WriteCategory
			contentType string
			content     []byte
		}{RobotsFileName, CategoryRobots, "text/plain; charset=utf-8", []byte(buildRobots(s.cfg.SiteDomain, true))})
	}

	artifacts := make([]Artifact, 0, len(files))
	for _, file := range files {
		checksum := computeHash(file.content)
		req := WriteRequest{
			Path:        file.name,
			Content:     bytes.NewReader(file.content),
			Size:        int64(len(file.content)),
			Category:    file.category,
			ContentType: file.contentType,
			Checksum:    checksum,
			Metadata: map[string]string{
				"routes":       strconv.Itoa(len(slugs)),
				"generated_at": generatedAt.UTC().Format(time.RFC3339),
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return artifacts, fmt.Errorf("generator: write %s: %w", file.name, err)
		}
		s.logger.Info("generator.site_file.written", "path", file.name, "routes", len(slugs))
		artifacts = append(artifacts, Artifact{
			Category:  file.category,
			LocalPath: s.cfg.localPath(file.name),
			RepoPath:  file.name,
			Checksum:  checksum,
		})
	}
	return artifacts, nil
}

func (s *service) manifestTargetPath() string {
	return joinOutputPath(s.cfg.OutputDir, manifestFileName)
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	data, err := s.deps.Storage.ReadFile(ctx, s.manifestTargetPath())
	if errors.Is(err, os.ErrNotExist) {
		return newBuildManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	return parseBuildManifest(data)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := s.manifestTargetPath()
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
		"run_id":  manifest.RunID,
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	req := WriteRequest{
		Path:        target,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    CategoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    metadata,
	}
	return writer.WriteFile(ctx, req)
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
