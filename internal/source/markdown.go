package source

import (
	"context"
	"os"

	"github.com/goliatone/go-petpassport/internal/markdown"
	"github.com/goliatone/go-petpassport/internal/routes"
)

// MarkdownDir reads one route per Markdown file. Front matter carries the
// route columns and the body becomes the detailed requirements. Drafts are
// left out.
type MarkdownDir struct {
	dir    string
	loader *markdown.Loader
}

func NewMarkdownDir(dir string) *MarkdownDir {
	return &MarkdownDir{
		dir:    dir,
		loader: markdown.NewLoader(os.DirFS(dir), markdown.LoaderConfig{}),
	}
}

func (m *MarkdownDir) Fetch(ctx context.Context) ([]routes.Row, error) {
	files, err := m.loader.LoadDirectory(ctx, ".")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fetchError(err, "load markdown dir "+m.dir)
	}

	rows := make([]routes.Row, 0, len(files))
	for _, file := range files {
		meta := file.FrontMatter
		if meta.Draft {
			continue
		}
		rows = append(rows, routes.Row{
			routes.ColumnOrigin:      meta.Origin,
			routes.ColumnDestination: meta.Destination,
			routes.ColumnAnimal:      meta.Animal,
			routes.ColumnBrief:       meta.Requirements,
			routes.ColumnDetailed:    string(file.Body),
			routes.ColumnSlug:        meta.Slug,
		})
	}
	return rows, nil
}
