package routescmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-petpassport/internal/commands"
	"github.com/goliatone/go-petpassport/internal/generator"
	"github.com/goliatone/go-petpassport/internal/logging"
	"github.com/goliatone/go-petpassport/internal/publisher"
	"github.com/goliatone/go-petpassport/internal/routes"
	"github.com/goliatone/go-petpassport/internal/source"
	"github.com/goliatone/go-petpassport/pkg/interfaces"
)

var (
	ErrSourceRequired    = errors.New("routes command: source is required")
	ErrGeneratorRequired = errors.New("routes command: generator is required")
	ErrPublisherRequired = errors.New("routes command: publisher is required")
	ErrStorageRequired   = errors.New("routes command: storage is required")
	ErrManifestMissing   = errors.New("routes command: routes.json not found, run generate first")
)

// Publisher uploads generated artifacts.
type Publisher interface {
	Publish(ctx context.Context, artifacts []generator.Artifact) (*publisher.Result, error)
}

// Dependencies lists the collaborators shared by the routes handlers.
type Dependencies struct {
	Source    source.Source
	Generator generator.Service
	Publisher Publisher
	// Output mirrors the generator configuration; publish and sitemap use it
	// to locate the files a previous run produced.
	Output  generator.Config
	Storage generator.Storage
	Logger  interfaces.Logger
	Now     func() time.Time
}

func (d Dependencies) logger() interfaces.Logger {
	if d.Logger == nil {
		return logging.NoOp()
	}
	return d.Logger
}

func (d Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// GenerateRoutesHandler fetches rows and builds the site.
type GenerateRoutesHandler struct {
	inner *commands.Handler[GenerateRoutesCommand]
}

// NewGenerateRoutesHandler constructs a handler wired to the source and generator.
func NewGenerateRoutesHandler(deps Dependencies, opts ...commands.HandlerOption[GenerateRoutesCommand]) *GenerateRoutesHandler {
	baseLogger := deps.logger()

	exec := func(ctx context.Context, msg GenerateRoutesCommand) error {
		result, err := generate(ctx, deps, msg.DryRun, msg.RunID)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Build: result,
			Metadata: map[string]any{
				"operation": "generate",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[GenerateRoutesCommand]{
		commands.WithLogger[GenerateRoutesCommand](baseLogger),
		commands.WithOperation[GenerateRoutesCommand]("routes.generate"),
		commands.WithMessageFields(func(msg GenerateRoutesCommand) map[string]any {
			return runFields(msg.DryRun, msg.RunID)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[GenerateRoutesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &GenerateRoutesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[GenerateRoutesCommand].
func (h *GenerateRoutesHandler) Execute(ctx context.Context, msg GenerateRoutesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishRoutesHandler uploads the artifacts of a previous generate run.
type PublishRoutesHandler struct {
	inner *commands.Handler[PublishRoutesCommand]
}

// NewPublishRoutesHandler constructs a handler wired to the publisher.
func NewPublishRoutesHandler(deps Dependencies, opts ...commands.HandlerOption[PublishRoutesCommand]) *PublishRoutesHandler {
	baseLogger := deps.logger()

	exec := func(ctx context.Context, msg PublishRoutesCommand) error {
		if deps.Publisher == nil {
			return ErrPublisherRequired
		}
		slugs := trimSlugs(msg.Slugs)
		if len(slugs) == 0 {
			stored, err := readManifest(ctx, deps.Storage)
			if err != nil {
				return err
			}
			slugs = stored
		}

		result, err := deps.Publisher.Publish(ctx, generator.PlanArtifacts(deps.Output, slugs))
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Publish: result,
			Metadata: map[string]any{
				"operation": "publish",
				"routes":    len(slugs),
			},
		})
		return stageError(err, goerrors.CategoryExternal, TextCodePublishFailed, "publish routes")
	}

	handlerOpts := []commands.HandlerOption[PublishRoutesCommand]{
		commands.WithLogger[PublishRoutesCommand](baseLogger),
		commands.WithOperation[PublishRoutesCommand]("routes.publish"),
		commands.WithMessageFields(func(msg PublishRoutesCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Slugs) > 0 {
				fields["slugs"] = len(msg.Slugs)
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishRoutesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishRoutesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishRoutesCommand].
func (h *PublishRoutesHandler) Execute(ctx context.Context, msg PublishRoutesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncRoutesHandler runs generate followed by publish.
type SyncRoutesHandler struct {
	inner *commands.Handler[SyncRoutesCommand]
}

// NewSyncRoutesHandler constructs the full pipeline handler.
func NewSyncRoutesHandler(deps Dependencies, opts ...commands.HandlerOption[SyncRoutesCommand]) *SyncRoutesHandler {
	baseLogger := deps.logger()

	exec := func(ctx context.Context, msg SyncRoutesCommand) error {
		envelope := ResultEnvelope{
			Metadata: map[string]any{
				"operation": "sync",
			},
		}
		build, err := generate(ctx, deps, msg.DryRun, msg.RunID)
		envelope.Build = build
		if err != nil {
			invokeCallback(msg.ResultCallback, envelope)
			return err
		}

		switch {
		case msg.DryRun:
			envelope.Metadata["publish_skipped"] = "dry_run"
		case msg.SkipPublish:
			envelope.Metadata["publish_skipped"] = "requested"
		case deps.Publisher == nil:
			invokeCallback(msg.ResultCallback, envelope)
			return ErrPublisherRequired
		default:
			envelope.Publish, err = deps.Publisher.Publish(ctx, build.Artifacts)
		}
		invokeCallback(msg.ResultCallback, envelope)
		return stageError(err, goerrors.CategoryExternal, TextCodePublishFailed, "publish routes")
	}

	handlerOpts := []commands.HandlerOption[SyncRoutesCommand]{
		commands.WithLogger[SyncRoutesCommand](baseLogger),
		commands.WithOperation[SyncRoutesCommand]("routes.sync"),
		commands.WithMessageFields(func(msg SyncRoutesCommand) map[string]any {
			fields := runFields(msg.DryRun, msg.RunID)
			if msg.SkipPublish {
				fields["skip_publish"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncRoutesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncRoutesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncRoutesCommand].
func (h *SyncRoutesHandler) Execute(ctx context.Context, msg SyncRoutesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RefreshSitemapHandler rewrites sitemap.xml from routes.json without
// touching the pages.
type RefreshSitemapHandler struct {
	inner *commands.Handler[RefreshSitemapCommand]
}

// NewRefreshSitemapHandler constructs a handler that re-emits the sitemap.
func NewRefreshSitemapHandler(deps Dependencies, opts ...commands.HandlerOption[RefreshSitemapCommand]) *RefreshSitemapHandler {
	baseLogger := deps.logger()

	exec := func(ctx context.Context, msg RefreshSitemapCommand) error {
		slugs, err := readManifest(ctx, deps.Storage)
		if err != nil {
			return err
		}
		domain := strings.TrimSpace(msg.Domain)
		if domain == "" {
			domain = deps.Output.SiteDomain
		}
		content := []byte(generator.EmitSitemap(slugs, domain, deps.now()))
		err = deps.Storage.WriteFile(ctx, generator.WriteRequest{
			Path:        generator.SitemapFileName,
			Content:     bytes.NewReader(content),
			Size:        int64(len(content)),
			Category:    generator.CategorySitemap,
			ContentType: "application/xml",
		})
		if err != nil {
			return stageError(err, goerrors.CategoryOperation, TextCodeSitemapFailed, "write sitemap")
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Metadata: map[string]any{
				"operation": "sitemap",
				"routes":    len(slugs),
				"domain":    domain,
			},
		})
		return nil
	}

	handlerOpts := []commands.HandlerOption[RefreshSitemapCommand]{
		commands.WithLogger[RefreshSitemapCommand](baseLogger),
		commands.WithOperation[RefreshSitemapCommand]("routes.sitemap"),
		commands.WithMessageFields(func(msg RefreshSitemapCommand) map[string]any {
			fields := map[string]any{}
			if domain := strings.TrimSpace(msg.Domain); domain != "" {
				fields["domain"] = domain
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RefreshSitemapCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RefreshSitemapHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RefreshSitemapCommand].
func (h *RefreshSitemapHandler) Execute(ctx context.Context, msg RefreshSitemapCommand) error {
	return h.inner.Execute(ctx, msg)
}

func generate(ctx context.Context, deps Dependencies, dryRun bool, runID string) (*generator.BuildResult, error) {
	if deps.Source == nil {
		return nil, ErrSourceRequired
	}
	if deps.Generator == nil {
		return nil, ErrGeneratorRequired
	}
	rows, err := deps.Source.Fetch(ctx)
	if err != nil {
		return nil, stageError(err, goerrors.CategoryExternal, TextCodeSourceFailed, "fetch route rows")
	}
	result, err := deps.Generator.Build(ctx, routes.FromRows(rows), generator.BuildOptions{
		DryRun: dryRun,
		RunID:  strings.TrimSpace(runID),
	})
	return result, stageError(err, goerrors.CategoryOperation, TextCodeBuildFailed, "build route site")
}

func readManifest(ctx context.Context, storage generator.Storage) ([]string, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}
	data, err := storage.ReadFile(ctx, generator.RoutesFileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, stageError(ErrManifestMissing, goerrors.CategoryNotFound, TextCodeManifestMissing, "read routes manifest")
		}
		return nil, fmt.Errorf("routes command: read %s: %w", generator.RoutesFileName, err)
	}
	return generator.ParseManifest(data)
}

func trimSlugs(slugs []string) []string {
	if len(slugs) == 0 {
		return nil
	}
	out := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if trimmed := strings.TrimSpace(slug); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func runFields(dryRun bool, runID string) map[string]any {
	fields := map[string]any{}
	if dryRun {
		fields["dry_run"] = true
	}
	if id := strings.TrimSpace(runID); id != "" {
		fields["run_id"] = id
	}
	return fields
}
