package routescmd

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-petpassport/internal/commands"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the routes command handlers produced by RegisterRoutesCommands.
type HandlerSet struct {
	Generate *GenerateRoutesHandler
	Publish  *PublishRoutesHandler
	Sync     *SyncRoutesHandler
	Sitemap  *RefreshSitemapHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	generateOpts []commands.HandlerOption[GenerateRoutesCommand]
	publishOpts  []commands.HandlerOption[PublishRoutesCommand]
	syncOpts     []commands.HandlerOption[SyncRoutesCommand]
	sitemapOpts  []commands.HandlerOption[RefreshSitemapCommand]
}

// WithGenerateHandlerOptions forwards options to the GenerateRoutesHandler constructor.
func WithGenerateHandlerOptions(opts ...commands.HandlerOption[GenerateRoutesCommand]) Option {
	return func(cfg *options) {
		cfg.generateOpts = append(cfg.generateOpts, opts...)
	}
}

// WithPublishHandlerOptions forwards options to the PublishRoutesHandler constructor.
func WithPublishHandlerOptions(opts ...commands.HandlerOption[PublishRoutesCommand]) Option {
	return func(cfg *options) {
		cfg.publishOpts = append(cfg.publishOpts, opts...)
	}
}

// WithSyncHandlerOptions forwards options to the SyncRoutesHandler constructor.
func WithSyncHandlerOptions(opts ...commands.HandlerOption[SyncRoutesCommand]) Option {
	return func(cfg *options) {
		cfg.syncOpts = append(cfg.syncOpts, opts...)
	}
}

// WithSitemapHandlerOptions forwards options to the RefreshSitemapHandler constructor.
func WithSitemapHandlerOptions(opts ...commands.HandlerOption[RefreshSitemapCommand]) Option {
	return func(cfg *options) {
		cfg.sitemapOpts = append(cfg.sitemapOpts, opts...)
	}
}

// WithTimeout applies the same execution timeout to every handler.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *options) {
		cfg.generateOpts = append(cfg.generateOpts, commands.WithTimeout[GenerateRoutesCommand](timeout))
		cfg.publishOpts = append(cfg.publishOpts, commands.WithTimeout[PublishRoutesCommand](timeout))
		cfg.syncOpts = append(cfg.syncOpts, commands.WithTimeout[SyncRoutesCommand](timeout))
		cfg.sitemapOpts = append(cfg.sitemapOpts, commands.WithTimeout[RefreshSitemapCommand](timeout))
	}
}

// RegisterRoutesCommands builds the routes command handlers and registers them with the
// provided registry. The HandlerSet is returned so callers can wire CLI or cron integrations.
func RegisterRoutesCommands(reg CommandRegistry, deps Dependencies, opts ...Option) (*HandlerSet, error) {
	if deps.Generator == nil {
		return nil, errors.New("routes command registration: generator is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		Generate: NewGenerateRoutesHandler(deps, cfg.generateOpts...),
		Publish:  NewPublishRoutesHandler(deps, cfg.publishOpts...),
		Sync:     NewSyncRoutesHandler(deps, cfg.syncOpts...),
		Sitemap:  NewRefreshSitemapHandler(deps, cfg.sitemapOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Generate, set.Publish, set.Sync, set.Sitemap} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// SyncExecutor runs the sync pipeline; *SyncRoutesHandler satisfies it.
type SyncExecutor interface {
	Execute(ctx context.Context, msg SyncRoutesCommand) error
}

// RegisterSyncCron wires the sync handler into a cron registrar. Each tick
// runs msg under ctx, so cancelling ctx aborts a run in progress and turns
// later ticks into no-ops.
func RegisterSyncCron(ctx context.Context, reg CronRegistrar, handler SyncExecutor, cfg command.HandlerConfig, msg SyncRoutesCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return reg(cfg, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return handler.Execute(ctx, msg)
	})
}
