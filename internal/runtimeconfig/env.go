package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Environment variables read by Load.
const (
	EnvFile              = "ENV_FILE"
	EnvSourceKind        = "PETPASSPORT_SOURCE"
	EnvSpreadsheetID     = "PETPASSPORT_SPREADSHEET_ID"
	EnvSheetName         = "PETPASSPORT_SHEET_NAME"
	EnvSourcePath        = "PETPASSPORT_SOURCE_PATH"
	EnvCredentials       = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvRootDir           = "PETPASSPORT_ROOT_DIR"
	EnvPagesDir          = "PETPASSPORT_OUTPUT_DIR"
	EnvTrackChanges      = "PETPASSPORT_TRACK_CHANGES"
	EnvSiteDomain        = "PETPASSPORT_SITE_DOMAIN"
	EnvRobots            = "PETPASSPORT_ROBOTS"
	EnvAmazonBRTag       = "PETPASSPORT_AMAZON_BR_TAG"
	EnvAmazonUSTag       = "PETPASSPORT_AMAZON_US_TAG"
	EnvAmazonUKTag       = "PETPASSPORT_AMAZON_UK_TAG"
	EnvBookingAID        = "PETPASSPORT_BOOKING_AID"
	EnvGitHubToken       = "GITHUB_TOKEN"
	EnvGitHubRepo        = "PETPASSPORT_GITHUB_REPO"
	EnvGitHubBranch      = "PETPASSPORT_GITHUB_BRANCH"
	EnvGitHubAPI         = "PETPASSPORT_GITHUB_API"
	EnvDetailedFormat    = "PETPASSPORT_DETAILED_FORMAT"
	EnvCommandTimeout    = "PETPASSPORT_COMMAND_TIMEOUT"
	EnvLogProvider       = "PETPASSPORT_LOG_PROVIDER"
	EnvLogLevel          = "PETPASSPORT_LOG_LEVEL"
	EnvLogFormat         = "PETPASSPORT_LOG_FORMAT"
	EnvLogAddSource      = "PETPASSPORT_LOG_ADD_SOURCE"
	EnvLogFocus          = "PETPASSPORT_LOG_FOCUS"
	defaultEnvFile       = ".env"
	defaultLocalEnvFile  = ".env.local"
)

// LoadEnvFiles loads ENV_FILE (when set), .env.local and .env into the
// process environment. Variables already set win; missing files are ignored.
func LoadEnvFiles() error {
	files := []string{}
	if custom := strings.TrimSpace(os.Getenv(EnvFile)); custom != "" {
		files = append(files, custom)
	}
	files = append(files, defaultLocalEnvFile, defaultEnvFile)
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("petpassport config: load %s: %w", file, err)
		}
	}
	return nil
}

// Load returns DefaultConfig overlaid with the values lookup resolves.
// A nil lookup reads the process environment.
func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := DefaultConfig()
	var errs []error

	str := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	boolean := func(key string, target *bool) {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, fmt.Errorf("petpassport config: %s: %w", key, err))
			return
		}
		*target = parsed
	}

	str(EnvSourceKind, &cfg.Source.Kind)
	str(EnvSpreadsheetID, &cfg.Source.SpreadsheetID)
	str(EnvSheetName, &cfg.Source.SheetName)
	str(EnvSourcePath, &cfg.Source.Path)
	str(EnvCredentials, &cfg.Source.CredentialsFile)
	str(EnvRootDir, &cfg.Output.RootDir)
	str(EnvPagesDir, &cfg.Output.PagesDir)
	boolean(EnvTrackChanges, &cfg.Output.TrackChanges)
	str(EnvSiteDomain, &cfg.Site.Domain)
	boolean(EnvRobots, &cfg.Site.GenerateRobots)
	str(EnvAmazonBRTag, &cfg.Affiliate.AmazonBRTag)
	str(EnvAmazonUSTag, &cfg.Affiliate.AmazonUSTag)
	str(EnvAmazonUKTag, &cfg.Affiliate.AmazonUKTag)
	str(EnvBookingAID, &cfg.Affiliate.BookingAID)
	str(EnvGitHubToken, &cfg.GitHub.Token)
	str(EnvGitHubRepo, &cfg.GitHub.Repo)
	str(EnvGitHubBranch, &cfg.GitHub.Branch)
	str(EnvGitHubAPI, &cfg.GitHub.BaseURL)
	str(EnvDetailedFormat, &cfg.Render.DetailedFormat)
	str(EnvLogProvider, &cfg.Logging.Provider)
	str(EnvLogLevel, &cfg.Logging.Level)
	str(EnvLogFormat, &cfg.Logging.Format)
	boolean(EnvLogAddSource, &cfg.Logging.AddSource)

	if value, ok := lookup(EnvLogFocus); ok && strings.TrimSpace(value) != "" {
		cfg.Logging.Focus = splitList(value)
	}
	if value, ok := lookup(EnvCommandTimeout); ok && strings.TrimSpace(value) != "" {
		timeout, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, fmt.Errorf("petpassport config: %s: %w", EnvCommandTimeout, err))
		} else {
			cfg.Commands.Timeout = timeout
		}
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
