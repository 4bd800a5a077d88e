package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-petpassport/internal/affiliate"
	"github.com/goliatone/go-petpassport/internal/commands"
	routescmd "github.com/goliatone/go-petpassport/internal/commands/routes"
	"github.com/goliatone/go-petpassport/internal/generator"
	"github.com/goliatone/go-petpassport/internal/logging"
	"github.com/goliatone/go-petpassport/internal/logging/console"
	"github.com/goliatone/go-petpassport/internal/logging/gologger"
	"github.com/goliatone/go-petpassport/internal/lookup"
	"github.com/goliatone/go-petpassport/internal/publisher"
	"github.com/goliatone/go-petpassport/internal/render"
	"github.com/goliatone/go-petpassport/internal/routes"
	"github.com/goliatone/go-petpassport/internal/runtimeconfig"
	"github.com/goliatone/go-petpassport/internal/source"
	"github.com/goliatone/go-petpassport/pkg/interfaces"
)

// Options captures CLI overrides applied on top of the environment
// configuration. Empty strings and nil pointers keep the configured value.
// SkipEnvFiles disables loading .env files and Registry, when set, receives
// every routes handler.
type Options struct {
	SourceKind     string
	SourcePath     string
	SheetName      string
	RootDir        string
	OutputDir      string
	SiteDomain     string
	DetailedFormat string
	GenerateRobots *bool
	TrackChanges   *bool
	RunID          string

	SkipEnvFiles   bool
	Lookup         runtimeconfig.LookupFunc
	LoggerProvider interfaces.LoggerProvider
	Registry       routescmd.CommandRegistry
	HTTPClient     *http.Client
	Now            func() time.Time
}

// Module holds the wired pipeline for one CLI invocation.
type Module struct {
	Config    runtimeconfig.Config
	RunID     string
	Logger    interfaces.Logger
	Source    source.Source
	Generator generator.Service
	Publisher *publisher.Publisher
	Storage   generator.Storage
	Handlers  *routescmd.HandlerSet
}

// BuildModule loads configuration, applies opts and wires every component.
func BuildModule(opts Options) (*Module, error) {
	if !opts.SkipEnvFiles {
		if err := runtimeconfig.LoadEnvFiles(); err != nil {
			return nil, err
		}
	}
	cfg, err := runtimeconfig.Load(opts.Lookup)
	if err != nil {
		return nil, err
	}
	applyOverrides(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider, err = NewLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
	}

	runID := strings.TrimSpace(opts.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	rootLogger := logging.WithRunID(logging.ModuleLogger(provider, ""), runID)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	tables := lookup.DefaultTables()
	renderer, err := render.New(tables, render.Options{
		DetailedFormat: render.DetailedFormat(strings.ToLower(strings.TrimSpace(cfg.Render.DetailedFormat))),
	})
	if err != nil {
		return nil, fmt.Errorf("initialise renderer: %w", err)
	}

	output := generator.Config{
		RootDir:        cfg.Output.RootDir,
		OutputDir:      cfg.Output.PagesDir,
		SiteDomain:     cfg.Site.Domain,
		GenerateRobots: cfg.Site.GenerateRobots,
		TrackChanges:   cfg.Output.TrackChanges,
	}
	storage := generator.NewFilesystemStorage(cfg.Output.RootDir)

	gen := generator.NewService(output, generator.Dependencies{
		Deriver: routes.NewDeriver(tables),
		Links: affiliate.NewBuilder(affiliate.Config{
			AmazonBRTag: cfg.Affiliate.AmazonBRTag,
			AmazonUSTag: cfg.Affiliate.AmazonUSTag,
			AmazonUKTag: cfg.Affiliate.AmazonUKTag,
			BookingAID:  cfg.Affiliate.BookingAID,
		}),
		Renderer: renderer,
		Storage:  storage,
		// Build tags its own entries with the run id of each build.
		Logger: logging.GeneratorLogger(provider),
		Now:    now,
	})

	client := publisher.NewClient(publisher.ClientConfig{
		BaseURL:    cfg.GitHub.BaseURL,
		Repo:       cfg.GitHub.Repo,
		Branch:     cfg.GitHub.Branch,
		Token:      cfg.GitHub.Token,
		HTTPClient: opts.HTTPClient,
	})
	pub := publisher.New(publisher.Config{
		Token:  cfg.GitHub.Token,
		Repo:   cfg.GitHub.Repo,
		Branch: cfg.GitHub.Branch,
	}, client,
		publisher.WithLogger(logging.WithRunID(logging.PublisherLogger(provider), runID)),
		publisher.WithClock(now),
	)

	src := &deferredSource{
		cfg: source.Config{
			Kind:            source.Kind(cfg.Source.Kind),
			SpreadsheetID:   cfg.Source.SpreadsheetID,
			SheetName:       cfg.Source.SheetName,
			CredentialsFile: cfg.Source.CredentialsFile,
			Path:            cfg.Source.Path,
		},
		logger: logging.WithRunID(logging.SourceLogger(provider), runID),
	}

	deps := routescmd.Dependencies{
		Source:    src,
		Generator: gen,
		Publisher: pub,
		Output:    output,
		Storage:   storage,
		Logger:    logging.WithRunID(commands.CommandLogger(provider, "routes"), runID),
		Now:       now,
	}
	set, err := routescmd.RegisterRoutesCommands(opts.Registry, deps, routescmd.WithTimeout(cfg.Commands.Timeout))
	if err != nil {
		return nil, fmt.Errorf("register routes commands: %w", err)
	}

	return &Module{
		Config:    cfg,
		RunID:     runID,
		Logger:    rootLogger,
		Source:    src,
		Generator: gen,
		Publisher: pub,
		Storage:   storage,
		Handlers:  set,
	}, nil
}

// NewLoggerProvider returns the provider selected by cfg.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "", "console":
		opts := console.Options{Writer: os.Stderr}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

func applyOverrides(cfg *runtimeconfig.Config, opts Options) {
	set := func(target *string, value string) {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			*target = trimmed
		}
	}
	set(&cfg.Source.Kind, opts.SourceKind)
	set(&cfg.Source.Path, opts.SourcePath)
	set(&cfg.Source.SheetName, opts.SheetName)
	set(&cfg.Output.RootDir, opts.RootDir)
	set(&cfg.Output.PagesDir, opts.OutputDir)
	set(&cfg.Site.Domain, opts.SiteDomain)
	set(&cfg.Render.DetailedFormat, opts.DetailedFormat)
	if opts.GenerateRobots != nil {
		cfg.Site.GenerateRobots = *opts.GenerateRobots
	}
	if opts.TrackChanges != nil {
		cfg.Output.TrackChanges = *opts.TrackChanges
	}
}

// deferredSource builds the configured source on first fetch so commands
// that never read rows do not need source credentials.
type deferredSource struct {
	cfg    source.Config
	logger interfaces.Logger

	mu  sync.Mutex
	src source.Source
}

func (d *deferredSource) Fetch(ctx context.Context) ([]routes.Row, error) {
	d.mu.Lock()
	if d.src == nil {
		src, err := source.New(ctx, d.cfg, d.logger)
		if err != nil {
			d.mu.Unlock()
			return nil, err
		}
		d.src = src
	}
	src := d.src
	d.mu.Unlock()
	return src.Fetch(ctx)
}
