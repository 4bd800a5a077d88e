package gologger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-petpassport/internal/logging"
	"github.com/goliatone/go-petpassport/pkg/interfaces"
)

const rootName = "petpassport"

// Config selects the go-logger output for a run.
type Config struct {
	Level  string
	Format string
	// AddSource records the caller location on every entry.
	AddSource bool
	// Focus restricts output to the named modules. Short names such as
	// "generator" are expanded to "petpassport.generator".
	Focus []string
}

// Provider hands out go-logger children of the petpassport root logger.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds the root logger. An empty format selects JSON.
func NewProvider(cfg Config) (*Provider, error) {
	format, err := formatOption(cfg.Format)
	if err != nil {
		return nil, err
	}
	options := []glog.Option{
		glog.WithName(rootName),
		format,
		glog.WithRichErrorHandler(errorAttrs),
	}
	if level := parseLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if modules := focusModules(cfg.Focus); len(modules) > 0 {
		root.Focus(modules...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the logger for a module name such as
// "petpassport.generator". An empty name returns the root logger.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" || name == rootName {
		return adapt(p.root)
	}
	return adapt(p.root.GetLogger(name))
}

func formatOption(format string) (glog.Option, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return glog.WithLoggerTypeJSON(), nil
	case "console":
		return glog.WithLoggerTypeConsole(), nil
	case "pretty":
		return glog.WithLoggerTypePretty(), nil
	}
	return nil, fmt.Errorf("logging: unsupported go-logger format %q", format)
}

func parseLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	}
	return ""
}

func focusModules(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			continue
		case name != rootName && !strings.HasPrefix(name, rootName+"."):
			name = rootName + "." + name
		}
		out = append(out, name)
	}
	return out
}

// errorAttrs surfaces the go-errors classification of a logged error, so a
// failed fetch or upload can be filtered by text code.
func errorAttrs(err error) []slog.Attr {
	var tagged *goerrors.Error
	if !errors.As(err, &tagged) {
		return nil
	}
	attrs := []slog.Attr{slog.String("error_category", string(tagged.Category))}
	if tagged.TextCode != "" {
		attrs = append(attrs, slog.String("text_code", tagged.TextCode))
	}
	if cause, ok := tagged.Metadata["cause_code"].(string); ok && cause != "" {
		attrs = append(attrs, slog.String("cause_code", cause))
	}
	return attrs
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return adapt(with.WithFields(maps.Clone(fields)))
	}
	return l
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return adapt(l.inner.WithContext(ctx))
}
