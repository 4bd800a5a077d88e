package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-petpassport/internal/logging"
	"github.com/goliatone/go-petpassport/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("petpassport.generator")
	logger = logging.WithFields(logger, map[string]any{"module": "petpassport.generator"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"run_id": "run-1",
	})
	logger = logger.WithContext(ctx)

	logger.Info("route.written", "slug", "uk-to-brazil-dog", "bytes", 1024)

	got := strings.TrimSpace(buf.String())
	want := "2025-03-14T15:09:26Z INFO route.written bytes=1024 logger=petpassport.generator module=petpassport.generator run_id=run-1 slug=uk-to-brazil-dog"
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("petpassport.test")
	logger.Debug("ignored.debug")
	logger.Warn("included.warn")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "WARN included.warn") {
		t.Fatalf("expected warn log to be written, got %s", lines[0])
	}
}

func TestConsoleLogger_QuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("x").Error("publish.failed", "error", errors.New("Bad credentials"), "dangling")

	line := buf.String()
	if !strings.Contains(line, `error="Bad credentials"`) {
		t.Fatalf("expected quoted error value, got %s", line)
	}
	if !strings.Contains(line, "field_1=dangling") {
		t.Fatalf("expected positional field for dangling arg, got %s", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"":        console.LevelInfo,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v (ok=%v)", input, want, got, ok)
		}
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}
