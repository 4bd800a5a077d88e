// Package publisher uploads generated artifacts to a GitHub repository
// through the contents API, one commit per file.
package publisher

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-petpassport/internal/generator"
	"github.com/goliatone/go-petpassport/internal/logging"
	"github.com/goliatone/go-petpassport/internal/runtimeconfig"
	"github.com/goliatone/go-petpassport/pkg/interfaces"
)

const (
	TextCodeArtifactMissing = "PUBLISH_ARTIFACT_MISSING"
	TextCodeUploadFailed    = "PUBLISH_UPLOAD_FAILED"
	TextCodeRejected        = "PUBLISH_REJECTED"
)

// ContentsAPI is the subset of the GitHub contents API the publisher needs.
type ContentsAPI interface {
	ContentSHA(ctx context.Context, path string) (string, error)
	PutContent(ctx context.Context, path string, body PutRequest) (*PutResponse, error)
}

// ArtifactStatus classifies the outcome of one upload.
type ArtifactStatus string

const (
	StatusPublished ArtifactStatus = "published"
	StatusMissing   ArtifactStatus = "missing"
	StatusFailed    ArtifactStatus = "failed"
)

// ArtifactResult is the outcome of publishing one artifact.
type ArtifactResult struct {
	Artifact generator.Artifact
	Status   ArtifactStatus
	// Created is true when the file did not exist remotely before.
	Created bool
	Message string
	Err     error
}

// Result summarises a publish run.
type Result struct {
	Skipped       bool
	Reason        string
	CommitMessage string
	Published     int
	Missing       int
	Failed        int
	Artifacts     []ArtifactResult
	Duration      time.Duration
}

// Config configures a Publisher.
type Config struct {
	Token  string
	Repo   string
	Branch string
}

// Publisher uploads artifacts sequentially, one attempt per file.
type Publisher struct {
	cfg      Config
	api      ContentsAPI
	logger   interfaces.Logger
	now      func() time.Time
	readFile func(string) ([]byte, error)
}

// Option customises a Publisher.
type Option func(*Publisher)

// WithLogger sets the publisher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Publisher) {
		p.logger = logging.OrNoOp(logger)
	}
}

// WithClock overrides the clock used for the commit message date.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// New returns a Publisher writing through api.
func New(cfg Config, api ContentsAPI, opts ...Option) *Publisher {
	if strings.TrimSpace(cfg.Branch) == "" {
		cfg.Branch = DefaultBranch
	}
	p := &Publisher{
		cfg:      cfg,
		api:      api,
		logger:   logging.NoOp(),
		now:      time.Now,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Configured reports whether a usable token is set.
func (p *Publisher) Configured() bool {
	token := strings.TrimSpace(p.cfg.Token)
	return token != "" && token != runtimeconfig.PlaceholderToken
}

// CommitMessage builds the commit message shared by every upload of a run.
func CommitMessage(routeCount int, day time.Time) string {
	return fmt.Sprintf("pSEO auto-update: %d routes · %s", routeCount, day.Format("2006-01-02"))
}

// Publish uploads artifacts in order. Missing local files and failed uploads
// are recorded and do not stop the run; only context cancellation aborts.
func (p *Publisher) Publish(ctx context.Context, artifacts []generator.Artifact) (*Result, error) {
	start := time.Now()
	result := &Result{}
	if !p.Configured() {
		result.Skipped = true
		result.Reason = "github token not configured"
		p.logger.Warn("publisher.skipped", "reason", result.Reason)
		return result, nil
	}
	if p.api == nil {
		return nil, errors.New("publisher: contents api is required")
	}

	routeCount := 0
	for _, artifact := range artifacts {
		if artifact.Category == generator.CategoryPage {
			routeCount++
		}
	}
	result.CommitMessage = CommitMessage(routeCount, p.now())
	p.logger.Info("publisher.start", "repo", p.cfg.Repo, "branch", p.cfg.Branch, "artifacts", len(artifacts))

	for _, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		outcome := p.publishOne(ctx, artifact, result.CommitMessage)
		switch outcome.Status {
		case StatusPublished:
			result.Published++
		case StatusMissing:
			result.Missing++
		case StatusFailed:
			result.Failed++
		}
		result.Artifacts = append(result.Artifacts, outcome)
	}

	result.Duration = time.Since(start)
	p.logger.Info("publisher.complete",
		"published", result.Published,
		"missing", result.Missing,
		"failed", result.Failed,
	)
	return result, nil
}

func (p *Publisher) publishOne(ctx context.Context, artifact generator.Artifact, message string) ArtifactResult {
	outcome := ArtifactResult{Artifact: artifact}
	logger := logging.WithFields(p.logger, map[string]any{"path": artifact.RepoPath})

	data, err := p.readFile(artifact.LocalPath)
	if err != nil {
		outcome.Status = StatusMissing
		outcome.Err = goerrors.Wrap(err, goerrors.CategoryNotFound, "local artifact unavailable").
			WithTextCode(TextCodeArtifactMissing)
		logger.Info("publisher.artifact.missing", "local", artifact.LocalPath)
		return outcome
	}

	sha, err := p.api.ContentSHA(ctx, artifact.RepoPath)
	if err != nil {
		// Treated as a new file; the PUT reports a conflict if it was not.
		logger.Warn("publisher.artifact.sha_lookup_failed", "error", err)
		sha = ""
	}
	outcome.Created = sha == ""

	resp, err := p.api.PutContent(ctx, artifact.RepoPath, PutRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(data),
		Branch:  p.cfg.Branch,
		SHA:     sha,
	})
	if err != nil {
		outcome.Status = StatusFailed
		var herr *HTTPError
		if errors.As(err, &herr) {
			outcome.Message = herr.Message
		}
		outcome.Err = goerrors.Wrap(err, goerrors.CategoryExternal, "upload artifact "+artifact.RepoPath).
			WithTextCode(TextCodeUploadFailed)
		logger.Warn("publisher.artifact.failed", "message", outcome.Message, "error", err)
		return outcome
	}
	if !resp.HasContent() {
		outcome.Status = StatusFailed
		outcome.Message = resp.Message()
		outcome.Err = goerrors.New("upload rejected: "+outcome.Message, goerrors.CategoryExternal).
			WithTextCode(TextCodeRejected)
		logger.Warn("publisher.artifact.rejected", "message", outcome.Message)
		return outcome
	}

	outcome.Status = StatusPublished
	logger.Info("publisher.artifact.published", "created", outcome.Created)
	return outcome
}
