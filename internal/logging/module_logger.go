package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-petpassport/pkg/interfaces"
)

const (
	rootModule      = "petpassport"
	sourceModule    = "petpassport.source"
	generatorModule = "petpassport.generator"
	publisherModule = "petpassport.publisher"
)

const (
	fieldRunID = "run_id"
	fieldSlug  = "slug"
	fieldRow   = "row"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module name is attached as
// a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// SourceLogger returns the logger namespace reserved for row sources.
func SourceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sourceModule)
}

// GeneratorLogger returns the logger namespace reserved for the page generator.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// PublisherLogger returns the logger namespace reserved for the publisher.
func PublisherLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publisherModule)
}

// WithRunID tags every entry of the returned logger with the run identifier.
func WithRunID(logger interfaces.Logger, runID string) interfaces.Logger {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldRunID: runID})
}

// WithRouteContext enriches the logger with the route slug and source row.
// Empty values are ignored.
func WithRouteContext(logger interfaces.Logger, slug string, row int) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldSlug] = trimmed
	}
	if row > 0 {
		fields[fieldRow] = row
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
