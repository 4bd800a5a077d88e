package routescmd

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-petpassport/internal/commands"
)

// Text codes for the pipeline stage a routes command failed in.
const (
	TextCodeSourceFailed    = "ROUTES_SOURCE_FAILED"
	TextCodeBuildFailed     = "ROUTES_BUILD_FAILED"
	TextCodePublishFailed   = "ROUTES_PUBLISH_FAILED"
	TextCodeManifestMissing = "ROUTES_MANIFEST_MISSING"
	TextCodeSitemapFailed   = "ROUTES_SITEMAP_FAILED"
)

// stageError tags err with the stage that produced it. Context errors pass
// through so the command layer reports them as cancellations. A text code set
// by the collaborator is kept in the cause_code metadata.
func stageError(err error, category goerrors.Category, code, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	wrapped := goerrors.Wrap(err, category, message)
	if cause := commands.TextCode(err); cause != "" {
		wrapped = wrapped.WithMetadata(map[string]any{"cause_code": cause})
	}
	return wrapped.WithTextCode(code)
}
