package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSourceKindInvalid        = errors.New("petpassport config: source kind is invalid")
	ErrSpreadsheetIDRequired    = errors.New("petpassport config: spreadsheet id is required for the sheets source")
	ErrSourcePathRequired       = errors.New("petpassport config: source path is required for file sources")
	ErrOutputDirRequired        = errors.New("petpassport config: output directory is required")
	ErrSiteDomainInvalid        = errors.New("petpassport config: site domain must be an absolute http(s) url")
	ErrGitHubRepoInvalid        = errors.New("petpassport config: github repo must look like owner/name")
	ErrDetailedFormatInvalid    = errors.New("petpassport config: detailed requirements format is invalid")
	ErrLoggingProviderRequired  = errors.New("petpassport config: logging provider is required")
	ErrLoggingProviderUnknown   = errors.New("petpassport config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("petpassport config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("petpassport config: logging format is invalid")
	ErrCommandTimeoutNotAllowed = errors.New("petpassport config: command timeout must be zero or positive")
)

// PlaceholderToken is the token shipped in sample configuration; publishing
// is skipped while it is set.
const PlaceholderToken = "cole-seu-novo-token-aqui"

// Config aggregates everything a generate/publish run needs.
type Config struct {
	Source    SourceConfig
	Output    OutputConfig
	Site      SiteConfig
	Affiliate AffiliateConfig
	GitHub    GitHubConfig
	Render    RenderConfig
	Commands  CommandsConfig
	Logging   LoggingConfig
}

// SourceConfig selects where route rows come from.
type SourceConfig struct {
	Kind            string
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	Path            string
}

// OutputConfig captures the local layout of generated files.
type OutputConfig struct {
	RootDir      string
	PagesDir     string
	TrackChanges bool
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Domain         string
	GenerateRobots bool
}

// AffiliateConfig carries the marketplace and lodging identifiers.
type AffiliateConfig struct {
	AmazonBRTag string
	AmazonUSTag string
	AmazonUKTag string
	BookingAID  string
}

// GitHubConfig configures the publish target.
type GitHubConfig struct {
	Token   string
	Repo    string
	Branch  string
	BaseURL string
}

// RenderConfig captures page rendering toggles.
type RenderConfig struct {
	DetailedFormat string
}

// CommandsConfig captures command-layer behaviour.
type CommandsConfig struct {
	Timeout time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			Kind:            "sheets",
			SpreadsheetID:   "1-f9NQ0sqBXA-tpKtRMG9h5aaSt5jK3Q-xoH7Bz8FXE0",
			SheetName:       "Página1",
			CredentialsFile: "pet-travel-pseo-a915ba0649b4.json",
		},
		Output: OutputConfig{
			RootDir:  ".",
			PagesDir: "routes",
		},
		Site: SiteConfig{
			Domain: "https://pet.e-dolphin.info",
		},
		Affiliate: AffiliateConfig{
			AmazonBRTag: "petpassport04-20",
			AmazonUSTag: "petpasspor03c-20",
			AmazonUKTag: "petpassportuk-21",
			BookingAID:  "seu-aid-booking",
		},
		GitHub: GitHubConfig{
			Token:   PlaceholderToken,
			Repo:    "JsilvaM7/pet-travel-guide",
			Branch:  "main",
			BaseURL: "https://api.github.com",
		},
		Render: RenderConfig{
			DetailedFormat: "text",
		},
		Commands: CommandsConfig{
			Timeout: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch kind := strings.ToLower(strings.TrimSpace(cfg.Source.Kind)); kind {
	case "", "sheets":
		if strings.TrimSpace(cfg.Source.SpreadsheetID) == "" {
			return ErrSpreadsheetIDRequired
		}
	case "xlsx", "csv", "markdown":
		if strings.TrimSpace(cfg.Source.Path) == "" {
			return fmt.Errorf("%w: %s", ErrSourcePathRequired, kind)
		}
	default:
		return fmt.Errorf("%w: %s", ErrSourceKindInvalid, kind)
	}
	if strings.TrimSpace(cfg.Output.PagesDir) == "" {
		return ErrOutputDirRequired
	}
	if !isHTTPURL(cfg.Site.Domain) {
		return fmt.Errorf("%w: %q", ErrSiteDomainInvalid, cfg.Site.Domain)
	}
	if repo := strings.Trim(strings.TrimSpace(cfg.GitHub.Repo), "/"); strings.Count(repo, "/") != 1 {
		return fmt.Errorf("%w: %q", ErrGitHubRepoInvalid, cfg.GitHub.Repo)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Render.DetailedFormat)) {
	case "", "text", "markdown":
	default:
		return fmt.Errorf("%w: %s", ErrDetailedFormatInvalid, cfg.Render.DetailedFormat)
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutNotAllowed
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func isHTTPURL(value string) bool {
	value = strings.TrimSpace(value)
	rest, ok := strings.CutPrefix(value, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(value, "http://")
	}
	return ok && strings.Trim(rest, "/") != ""
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
