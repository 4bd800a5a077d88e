package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-petpassport/cmd/petpassport/internal/bootstrap"
	routescmd "github.com/goliatone/go-petpassport/internal/commands/routes"
	"github.com/goliatone/go-petpassport/internal/generator"
	"github.com/goliatone/go-petpassport/internal/publisher"
)

type moduleOptions = bootstrap.Options

type generateHandler interface {
	Execute(context.Context, routescmd.GenerateRoutesCommand) error
}

type publishHandler interface {
	Execute(context.Context, routescmd.PublishRoutesCommand) error
}

type syncHandler interface {
	Execute(context.Context, routescmd.SyncRoutesCommand) error
}

type sitemapHandler interface {
	Execute(context.Context, routescmd.RefreshSitemapCommand) error
}

type handlerSet struct {
	generate generateHandler
	publish  publishHandler
	sync     syncHandler
	sitemap  sitemapHandler
}

type moduleResources struct {
	runID    string
	handlers handlerSet
}

var moduleBuilder = buildModule

func buildModule(opts moduleOptions) (*moduleResources, error) {
	module, err := bootstrap.BuildModule(opts)
	if err != nil {
		return nil, err
	}
	return &moduleResources{
		runID: module.RunID,
		handlers: handlerSet{
			generate: module.Handlers.Generate,
			publish:  module.Handlers.Publish,
			sync:     module.Handlers.Sync,
			sitemap:  module.Handlers.Sitemap,
		},
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("petpassport: %v", err)
	}
}

func usage() string {
	return "usage: petpassport <generate|publish|sync|sitemap|schedule> [flags]"
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand; %s", usage())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "generate":
		return runGenerate(ctx, args[1:])
	case "publish":
		return runPublish(ctx, args[1:])
	case "sync":
		return runSync(ctx, args[1:])
	case "sitemap":
		return runSitemap(ctx, args[1:])
	case "schedule":
		return runSchedule(ctx, args[1:])
	case "-h", "--help", "help":
		fmt.Fprintln(os.Stdout, usage())
		return nil
	default:
		return fmt.Errorf("unknown subcommand %q; %s", args[0], usage())
	}
}

// commonFlags registers the configuration overrides shared by every subcommand.
type commonFlags struct {
	fs             *flag.FlagSet
	sourceKind     *string
	sourcePath     *string
	sheet          *string
	root           *string
	output         *string
	domain         *string
	detailedFormat *string
	robots         *bool
	trackChanges   *bool
	runID          *string
}

func newCommonFlags(name string) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &commonFlags{
		fs:             fs,
		sourceKind:     fs.String("source", "", "Row source: sheets, xlsx, csv or markdown"),
		sourcePath:     fs.String("path", "", "Workbook, CSV file or markdown directory for file sources"),
		sheet:          fs.String("sheet", "", "Worksheet name"),
		root:           fs.String("root", "", "Directory receiving routes.json and sitemap.xml"),
		output:         fs.String("output", "", "Page directory relative to the root"),
		domain:         fs.String("domain", "", "Public site domain used in the sitemap"),
		detailedFormat: fs.String("detailed-format", "", "Detailed requirements format: text or markdown"),
		robots:         fs.Bool("robots", false, "Also write robots.txt"),
		trackChanges:   fs.Bool("track-changes", false, "Keep a build manifest and report changed pages"),
		runID:          fs.String("run-id", "", "Run identifier (uuid) attached to logs"),
	}
}

func (c *commonFlags) options() moduleOptions {
	opts := moduleOptions{
		SourceKind:     *c.sourceKind,
		SourcePath:     *c.sourcePath,
		SheetName:      *c.sheet,
		RootDir:        *c.root,
		OutputDir:      *c.output,
		SiteDomain:     *c.domain,
		DetailedFormat: *c.detailedFormat,
		RunID:          *c.runID,
	}
	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "robots":
			value := *c.robots
			opts.GenerateRobots = &value
		case "track-changes":
			value := *c.trackChanges
			opts.TrackChanges = &value
		}
	})
	return opts
}

func runGenerate(ctx context.Context, args []string) error {
	flags := newCommonFlags("generate")
	dryRun := flags.fs.Bool("dry-run", false, "Render every route without writing files")
	if err := flags.fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(flags.options())
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.handlers.generate == nil {
		return errors.New("generate handler not configured")
	}

	cmd := routescmd.GenerateRoutesCommand{
		DryRun: *dryRun,
		RunID:  module.runID,
		ResultCallback: func(env routescmd.ResultEnvelope) {
			logEnvelope("generate", env)
		},
	}
	if err := module.handlers.generate.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("generate routes: %w", err)
	}
	return nil
}

func runPublish(ctx context.Context, args []string) error {
	flags := newCommonFlags("publish")
	slugs := flags.fs.String("slugs", "", "Comma separated slugs to publish (defaults to routes.json)")
	if err := flags.fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(flags.options())
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.handlers.publish == nil {
		return errors.New("publish handler not configured")
	}

	cmd := routescmd.PublishRoutesCommand{
		Slugs: splitList(*slugs),
		ResultCallback: func(env routescmd.ResultEnvelope) {
			logEnvelope("publish", env)
		},
	}
	if err := module.handlers.publish.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("publish routes: %w", err)
	}
	return nil
}

func runSync(ctx context.Context, args []string) error {
	flags := newCommonFlags("sync")
	dryRun := flags.fs.Bool("dry-run", false, "Render every route without writing or publishing")
	skipPublish := flags.fs.Bool("skip-publish", false, "Generate only")
	if err := flags.fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(flags.options())
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.handlers.sync == nil {
		return errors.New("sync handler not configured")
	}

	cmd := routescmd.SyncRoutesCommand{
		DryRun:      *dryRun,
		SkipPublish: *skipPublish,
		RunID:       module.runID,
		ResultCallback: func(env routescmd.ResultEnvelope) {
			logEnvelope("sync", env)
		},
	}
	if err := module.handlers.sync.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("sync routes: %w", err)
	}
	return nil
}

func runSitemap(ctx context.Context, args []string) error {
	flags := newCommonFlags("sitemap")
	if err := flags.fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(flags.options())
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.handlers.sitemap == nil {
		return errors.New("sitemap handler not configured")
	}

	cmd := routescmd.RefreshSitemapCommand{
		Domain: strings.TrimSpace(*flags.domain),
		ResultCallback: func(env routescmd.ResultEnvelope) {
			logEnvelope("sitemap", env)
		},
	}
	if err := module.handlers.sitemap.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("refresh sitemap: %w", err)
	}
	return nil
}

func logEnvelope(operation string, env routescmd.ResultEnvelope) {
	if env.Build != nil {
		logBuildSummary(operation, env.Build)
	}
	if env.Publish != nil {
		logPublishSummary(operation, env.Publish)
	}
	if reason, ok := env.Metadata["publish_skipped"]; ok {
		log.Printf("module=petpassport operation=%s publish_skipped=%v", operation, reason)
	}
	if env.Build == nil && env.Publish == nil {
		log.Printf("module=petpassport operation=%s routes=%v domain=%v", operation, env.Metadata["routes"], env.Metadata["domain"])
	}
}

func logBuildSummary(operation string, result *generator.BuildResult) {
	log.Printf("module=petpassport operation=%s summary run_id=%s built=%d skipped=%d failed=%d changed=%d collisions=%d dry_run=%t duration=%s",
		operation,
		result.RunID,
		result.RoutesBuilt,
		result.RoutesSkipped,
		result.RoutesFailed,
		result.RoutesChanged,
		len(result.Collisions),
		result.DryRun,
		result.Duration,
	)
	for _, err := range result.Errors {
		log.Printf("module=petpassport operation=%s route_error=%q", operation, err.Error())
	}
}

func logPublishSummary(operation string, result *publisher.Result) {
	if result.Skipped {
		log.Printf("module=petpassport operation=%s publish skipped reason=%q", operation, result.Reason)
		return
	}
	log.Printf("module=petpassport operation=%s publish published=%d missing=%d failed=%d commit=%q duration=%s",
		operation,
		result.Published,
		result.Missing,
		result.Failed,
		result.CommitMessage,
		result.Duration,
	)
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
