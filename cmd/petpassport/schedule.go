package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	command "github.com/goliatone/go-command"
	"github.com/robfig/cron/v3"

	routescmd "github.com/goliatone/go-petpassport/internal/commands/routes"
)

const defaultSchedule = "@daily"

// waitForShutdown blocks the schedule subcommand until ctx ends.
var waitForShutdown = func(ctx context.Context) {
	<-ctx.Done()
}

func newCron() *cron.Cron {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
}

// cronRegistrar adapts a cron runner to the go-command registrar signature.
func cronRegistrar(c *cron.Cron) routescmd.CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		run, ok := handler.(func() error)
		if !ok {
			return fmt.Errorf("cron handler has unsupported type %T", handler)
		}
		_, err := c.AddFunc(cfg.Expression, func() {
			if err := run(); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("module=petpassport operation=schedule run_error=%q", err.Error())
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %q: %w", cfg.Expression, err)
		}
		return nil
	}
}

func runSchedule(ctx context.Context, args []string) error {
	flags := newCommonFlags("schedule")
	expression := flags.fs.String("cron", defaultSchedule, "Cron expression or descriptor for sync runs")
	runNow := flags.fs.Bool("run-now", false, "Run one sync before waiting for the schedule")
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

	msg := routescmd.SyncRoutesCommand{
		SkipPublish: *skipPublish,
		ResultCallback: func(env routescmd.ResultEnvelope) {
			logEnvelope("schedule", env)
		},
	}

	scheduler := newCron()
	if err := routescmd.RegisterSyncCron(ctx, cronRegistrar(scheduler), module.handlers.sync, command.HandlerConfig{Expression: *expression}, msg); err != nil {
		return err
	}

	if *runNow {
		if err := module.handlers.sync.Execute(ctx, msg); err != nil {
			return fmt.Errorf("sync routes: %w", err)
		}
	}

	log.Printf("module=petpassport operation=schedule started cron=%q", *expression)
	scheduler.Start()
	waitForShutdown(ctx)
	<-scheduler.Stop().Done()
	log.Printf("module=petpassport operation=schedule stopped")
	return nil
}
