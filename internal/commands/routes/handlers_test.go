package routescmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-petpassport/internal/generator"
	"github.com/goliatone/go-petpassport/internal/publisher"
	"github.com/goliatone/go-petpassport/internal/routes"
)

type fakeSource struct {
	rows []routes.Row
	err  error
}

func (f *fakeSource) Fetch(context.Context) ([]routes.Row, error) {
	return f.rows, f.err
}

type fakeGenerator struct {
	buildFunc func(ctx context.Context, records []routes.Record, opts generator.BuildOptions) (*generator.BuildResult, error)
	calls     int
}

func (f *fakeGenerator) Build(ctx context.Context, records []routes.Record, opts generator.BuildOptions) (*generator.BuildResult, error) {
	f.calls++
	if f.buildFunc != nil {
		return f.buildFunc(ctx, records, opts)
	}
	return &generator.BuildResult{}, nil
}

type fakePublisher struct {
	artifacts []generator.Artifact
	calls     int
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, artifacts []generator.Artifact) (*publisher.Result, error) {
	f.calls++
	f.artifacts = append([]generator.Artifact(nil), artifacts...)
	return &publisher.Result{Published: len(artifacts)}, f.err
}

func sampleRows() []routes.Row {
	return []routes.Row{
		{routes.ColumnOrigin: "United Kingdom", routes.ColumnDestination: "Brazil", routes.ColumnAnimal: "Dog"},
		{routes.ColumnOrigin: "", routes.ColumnDestination: "Brazil", routes.ColumnAnimal: "Dog"},
	}
}

func TestGenerateRoutesHandler_Execute(t *testing.T) {
	var captured []routes.Record
	var capturedOpts generator.BuildOptions
	gen := &fakeGenerator{
		buildFunc: func(_ context.Context, records []routes.Record, opts generator.BuildOptions) (*generator.BuildResult, error) {
			captured = records
			capturedOpts = opts
			return &generator.BuildResult{RoutesBuilt: 1, RoutesSkipped: 1, Slugs: []string{"united-kingdom-to-brazil-dog"}}, nil
		},
	}

	handler := NewGenerateRoutesHandler(Dependencies{
		Source:    &fakeSource{rows: sampleRows()},
		Generator: gen,
	})

	callbackInvoked := false
	cmd := GenerateRoutesCommand{
		DryRun: true,
		RunID:  " 6f1c3c1e-4a4b-4d8e-9d5c-0a1b2c3d4e5f ",
		ResultCallback: func(env ResultEnvelope) {
			callbackInvoked = true
			if env.Build == nil || env.Build.RoutesBuilt != 1 {
				t.Fatalf("expected build result with one route, got %#v", env.Build)
			}
			if env.Metadata["operation"] != "generate" {
				t.Fatalf("expected operation generate, got %v", env.Metadata["operation"])
			}
		},
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute generate: %v", err)
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
	if len(captured) != 2 {
		t.Fatalf("expected 2 records, got %d", len(captured))
	}
	if captured[0].Index != 0 || captured[1].Index != 1 {
		t.Fatalf("expected records in input order, got %d, %d", captured[0].Index, captured[1].Index)
	}
	if !capturedOpts.DryRun {
		t.Fatal("expected dry run to be forwarded")
	}
	if capturedOpts.RunID != "6f1c3c1e-4a4b-4d8e-9d5c-0a1b2c3d4e5f" {
		t.Fatalf("expected trimmed run id, got %q", capturedOpts.RunID)
	}
}

func TestGenerateRoutesHandler_FetchFailureAborts(t *testing.T) {
	fetchErr := errors.New("sheets unavailable")
	gen := &fakeGenerator{}
	handler := NewGenerateRoutesHandler(Dependencies{
		Source:    &fakeSource{err: fetchErr},
		Generator: gen,
	})

	err := handler.Execute(context.Background(), GenerateRoutesCommand{})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("expected generator not to run, got %d calls", gen.calls)
	}
}

func TestGenerateRoutesHandler_InvalidRunID(t *testing.T) {
	handler := NewGenerateRoutesHandler(Dependencies{
		Source:    &fakeSource{},
		Generator: &fakeGenerator{},
	})
	err := handler.Execute(context.Background(), GenerateRoutesCommand{RunID: "not-a-uuid"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "run_id") {
		t.Fatalf("expected run_id in error, got %v", err)
	}
}

func TestGenerateRoutesHandler_MissingDependencies(t *testing.T) {
	handler := NewGenerateRoutesHandler(Dependencies{Generator: &fakeGenerator{}})
	if err := handler.Execute(context.Background(), GenerateRoutesCommand{}); !errors.Is(err, ErrSourceRequired) {
		t.Fatalf("expected ErrSourceRequired, got %v", err)
	}

	handler = NewGenerateRoutesHandler(Dependencies{Source: &fakeSource{}})
	if err := handler.Execute(context.Background(), GenerateRoutesCommand{}); !errors.Is(err, ErrGeneratorRequired) {
		t.Fatalf("expected ErrGeneratorRequired, got %v", err)
	}
}

func TestSyncRoutesHandler_PublishesBuildArtifacts(t *testing.T) {
	artifacts := []generator.Artifact{
		{Category: generator.CategoryRoutes, RepoPath: generator.RoutesFileName},
		{Category: generator.CategorySitemap, RepoPath: generator.SitemapFileName},
		{Category: generator.CategoryPage, Slug: "a", RepoPath: "routes/a.html"},
	}
	gen := &fakeGenerator{
		buildFunc: func(context.Context, []routes.Record, generator.BuildOptions) (*generator.BuildResult, error) {
			return &generator.BuildResult{RoutesBuilt: 1, Slugs: []string{"a"}, Artifacts: artifacts}, nil
		},
	}
	pub := &fakePublisher{}
	handler := NewSyncRoutesHandler(Dependencies{
		Source:    &fakeSource{rows: sampleRows()},
		Generator: gen,
		Publisher: pub,
	})

	var envelope ResultEnvelope
	err := handler.Execute(context.Background(), SyncRoutesCommand{
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	})
	if err != nil {
		t.Fatalf("execute sync: %v", err)
	}
	if pub.calls != 1 {
		t.Fatalf("expected one publish call, got %d", pub.calls)
	}
	if len(pub.artifacts) != 3 || pub.artifacts[2].RepoPath != "routes/a.html" {
		t.Fatalf("unexpected published artifacts %#v", pub.artifacts)
	}
	if envelope.Build == nil || envelope.Publish == nil {
		t.Fatalf("expected build and publish results, got %#v", envelope)
	}
	if envelope.Publish.Published != 3 {
		t.Fatalf("expected 3 published, got %d", envelope.Publish.Published)
	}
}

func TestSyncRoutesHandler_SkipsPublish(t *testing.T) {
	cases := []struct {
		name   string
		cmd    SyncRoutesCommand
		reason string
	}{
		{name: "dry run", cmd: SyncRoutesCommand{DryRun: true}, reason: "dry_run"},
		{name: "skip publish", cmd: SyncRoutesCommand{SkipPublish: true}, reason: "requested"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &fakePublisher{}
			handler := NewSyncRoutesHandler(Dependencies{
				Source:    &fakeSource{rows: sampleRows()},
				Generator: &fakeGenerator{},
				Publisher: pub,
			})
			var envelope ResultEnvelope
			tc.cmd.ResultCallback = func(env ResultEnvelope) { envelope = env }
			if err := handler.Execute(context.Background(), tc.cmd); err != nil {
				t.Fatalf("execute sync: %v", err)
			}
			if pub.calls != 0 {
				t.Fatalf("expected publish to be skipped, got %d calls", pub.calls)
			}
			if envelope.Metadata["publish_skipped"] != tc.reason {
				t.Fatalf("expected publish_skipped %q, got %v", tc.reason, envelope.Metadata["publish_skipped"])
			}
		})
	}
}

func TestSyncRoutesHandler_BuildFailureStopsPublish(t *testing.T) {
	buildErr := errors.New("write routes.json")
	pub := &fakePublisher{}
	handler := NewSyncRoutesHandler(Dependencies{
		Source: &fakeSource{rows: sampleRows()},
		Generator: &fakeGenerator{
			buildFunc: func(context.Context, []routes.Record, generator.BuildOptions) (*generator.BuildResult, error) {
				return nil, buildErr
			},
		},
		Publisher: pub,
	})
	if err := handler.Execute(context.Background(), SyncRoutesCommand{}); !errors.Is(err, buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}
	if pub.calls != 0 {
		t.Fatalf("expected no publish, got %d calls", pub.calls)
	}
}

func TestPublishRoutesHandler_ReadsRoutesManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, generator.RoutesFileName), []byte(`["a", "b"]`), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	pub := &fakePublisher{}
	handler := NewPublishRoutesHandler(Dependencies{
		Publisher: pub,
		Output:    generator.Config{RootDir: root, OutputDir: "site/routes"},
		Storage:   generator.NewFilesystemStorage(root),
	})

	var envelope ResultEnvelope
	err := handler.Execute(context.Background(), PublishRoutesCommand{
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	})
	if err != nil {
		t.Fatalf("execute publish: %v", err)
	}

	want := []string{generator.RoutesFileName, generator.SitemapFileName, "routes/a.html", "routes/b.html"}
	if len(pub.artifacts) != len(want) {
		t.Fatalf("expected %d artifacts, got %d", len(want), len(pub.artifacts))
	}
	for i, path := range want {
		if pub.artifacts[i].RepoPath != path {
			t.Fatalf("artifact %d: expected %s, got %s", i, path, pub.artifacts[i].RepoPath)
		}
	}
	if got := pub.artifacts[2].LocalPath; got != filepath.Join(root, "site", "routes", "a.html") {
		t.Fatalf("unexpected local path %s", got)
	}
	if envelope.Metadata["routes"] != 2 {
		t.Fatalf("expected routes metadata 2, got %v", envelope.Metadata["routes"])
	}
}

func TestPublishRoutesHandler_ExplicitSlugs(t *testing.T) {
	pub := &fakePublisher{}
	handler := NewPublishRoutesHandler(Dependencies{Publisher: pub})
	if err := handler.Execute(context.Background(), PublishRoutesCommand{Slugs: []string{" a "}}); err != nil {
		t.Fatalf("execute publish: %v", err)
	}
	last := pub.artifacts[len(pub.artifacts)-1]
	if last.Slug != "a" || last.RepoPath != "routes/a.html" {
		t.Fatalf("unexpected page artifact %#v", last)
	}
}

func TestPublishRoutesHandler_MissingManifest(t *testing.T) {
	handler := NewPublishRoutesHandler(Dependencies{
		Publisher: &fakePublisher{},
		Storage:   generator.NewFilesystemStorage(t.TempDir()),
	})
	if err := handler.Execute(context.Background(), PublishRoutesCommand{}); !errors.Is(err, ErrManifestMissing) {
		t.Fatalf("expected ErrManifestMissing, got %v", err)
	}
}

func TestPublishRoutesHandler_RejectsInvalidSlugs(t *testing.T) {
	cases := map[string][]string{
		"blank":     {"a", "  "},
		"traversal": {"../escaped"},
		"nested":    {"routes/a"},
		"uppercase": {"Custom-Route"},
	}
	for name, slugs := range cases {
		t.Run(name, func(t *testing.T) {
			pub := &fakePublisher{}
			handler := NewPublishRoutesHandler(Dependencies{Publisher: pub})
			if err := handler.Execute(context.Background(), PublishRoutesCommand{Slugs: slugs}); err == nil {
				t.Fatal("expected validation error")
			}
			if pub.calls != 0 {
				t.Fatalf("expected no publish, got %d calls", pub.calls)
			}
		})
	}
}

func TestRefreshSitemapHandler_RewritesSitemap(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, generator.RoutesFileName), []byte(`["a"]`), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	handler := NewRefreshSitemapHandler(Dependencies{
		Output:  generator.Config{RootDir: root, SiteDomain: "https://configured.example"},
		Storage: generator.NewFilesystemStorage(root),
		Now:     func() time.Time { return now },
	})

	if err := handler.Execute(context.Background(), RefreshSitemapCommand{Domain: "https://override.example"}); err != nil {
		t.Fatalf("execute sitemap: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, generator.SitemapFileName))
	if err != nil {
		t.Fatalf("read sitemap: %v", err)
	}
	if want := generator.EmitSitemap([]string{"a"}, "https://override.example", now); string(data) != want {
		t.Fatalf("unexpected sitemap:\n%s", data)
	}
}

func TestRefreshSitemapHandler_InvalidDomain(t *testing.T) {
	handler := NewRefreshSitemapHandler(Dependencies{Storage: generator.NewFilesystemStorage(t.TempDir())})
	if err := handler.Execute(context.Background(), RefreshSitemapCommand{Domain: "example.com"}); err == nil {
		t.Fatal("expected validation error for relative domain")
	}
}
