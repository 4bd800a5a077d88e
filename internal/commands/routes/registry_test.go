package routescmd

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-petpassport/internal/commands"
)

type recordingRegistry struct {
	handlers []any
	err      error
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	if r.err != nil {
		return r.err
	}
	r.handlers = append(r.handlers, handler)
	return nil
}

type cronRegistration struct {
	config  command.HandlerConfig
	handler any
}

func TestRegisterRoutesCommandsRegistersHandlers(t *testing.T) {
	reg := &recordingRegistry{}
	set, err := RegisterRoutesCommands(reg, Dependencies{Generator: &fakeGenerator{}})
	if err != nil {
		t.Fatalf("register routes commands: %v", err)
	}
	if set.Generate == nil || set.Publish == nil || set.Sync == nil || set.Sitemap == nil {
		t.Fatalf("expected every handler, got %#v", set)
	}
	if len(reg.handlers) != 4 {
		t.Fatalf("expected four handlers registered, got %d", len(reg.handlers))
	}
	if reg.handlers[0] != any(set.Generate) || reg.handlers[2] != any(set.Sync) {
		t.Fatalf("unexpected registration order %#v", reg.handlers)
	}
}

func TestRegisterRoutesCommandsHandlerOptionsApplied(t *testing.T) {
	generateApplied := false
	syncApplied := false
	_, err := RegisterRoutesCommands(nil, Dependencies{Generator: &fakeGenerator{}},
		WithGenerateHandlerOptions(func(*commands.Handler[GenerateRoutesCommand]) { generateApplied = true }),
		WithSyncHandlerOptions(func(*commands.Handler[SyncRoutesCommand]) { syncApplied = true }),
	)
	if err != nil {
		t.Fatalf("register routes commands: %v", err)
	}
	if !generateApplied || !syncApplied {
		t.Fatalf("expected handler options applied, generate=%v sync=%v", generateApplied, syncApplied)
	}
}

func TestRegisterRoutesCommandsErrors(t *testing.T) {
	if _, err := RegisterRoutesCommands(nil, Dependencies{}); err == nil {
		t.Fatal("expected error when generator is nil")
	}
	regErr := errors.New("registry closed")
	_, err := RegisterRoutesCommands(&recordingRegistry{err: regErr}, Dependencies{Generator: &fakeGenerator{}})
	if !errors.Is(err, regErr) {
		t.Fatalf("expected registry error, got %v", err)
	}
}

func TestRegisterSyncCronRunsSync(t *testing.T) {
	gen := &fakeGenerator{}
	pub := &fakePublisher{}
	set, err := RegisterRoutesCommands(nil, Dependencies{
		Source:    &fakeSource{rows: sampleRows()},
		Generator: gen,
		Publisher: pub,
	})
	if err != nil {
		t.Fatalf("register routes commands: %v", err)
	}

	var registrations []cronRegistration
	registrar := func(cfg command.HandlerConfig, handler any) error {
		registrations = append(registrations, cronRegistration{config: cfg, handler: handler})
		return nil
	}

	cfg := command.HandlerConfig{Expression: "@daily"}
	if err := RegisterSyncCron(context.Background(), registrar, set.Sync, cfg, SyncRoutesCommand{}); err != nil {
		t.Fatalf("register sync cron: %v", err)
	}
	if len(registrations) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(registrations))
	}
	if registrations[0].config.Expression != "@daily" {
		t.Fatalf("expected expression @daily, got %q", registrations[0].config.Expression)
	}
	run, ok := registrations[0].handler.(func() error)
	if !ok {
		t.Fatalf("expected func() error handler, got %T", registrations[0].handler)
	}
	if err := run(); err != nil {
		t.Fatalf("run cron handler: %v", err)
	}
	if gen.calls != 1 || pub.calls != 1 {
		t.Fatalf("expected one build and one publish, got %d/%d", gen.calls, pub.calls)
	}
}

func TestRegisterSyncCronNoOp(t *testing.T) {
	if err := RegisterSyncCron(context.Background(), nil, &SyncRoutesHandler{}, command.HandlerConfig{}, SyncRoutesCommand{}); err != nil {
		t.Fatalf("expected nil error when registrar nil, got %v", err)
	}
	called := false
	registrar := func(command.HandlerConfig, any) error {
		called = true
		return nil
	}
	if err := RegisterSyncCron(context.Background(), registrar, nil, command.HandlerConfig{}, SyncRoutesCommand{}); err != nil {
		t.Fatalf("expected nil error when handler nil, got %v", err)
	}
	if called {
		t.Fatal("expected registrar not to be called without a handler")
	}
}

type blockingSync struct {
	mu    sync.Mutex
	calls int
}

func (b *blockingSync) Execute(ctx context.Context, _ SyncRoutesCommand) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (b *blockingSync) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func TestRegisterSyncCronFollowsCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := &blockingSync{}

	var run func() error
	registrar := func(_ command.HandlerConfig, handler any) error {
		run = handler.(func() error)
		return nil
	}
	if err := RegisterSyncCron(ctx, registrar, runner, command.HandlerConfig{Expression: "@hourly"}, SyncRoutesCommand{}); err != nil {
		t.Fatalf("register sync cron: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- run() }()
	for runner.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected in-flight run to be cancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected cancellation to stop the running sync")
	}

	if err := run(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected later ticks to be skipped, got %v", err)
	}
	if n := runner.callCount(); n != 1 {
		t.Fatalf("expected a single execution, got %d", n)
	}
}
