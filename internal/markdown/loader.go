package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// LoaderConfig configures how route files are discovered.
type LoaderConfig struct {
	// Pattern limits discovered files to those matching the glob. Empty
	// matches *.md and *.markdown.
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// RouteFile is one parsed route document.
type RouteFile struct {
	Path        string
	FrontMatter RouteFrontMatter
	Body        []byte
	Checksum    [sha256.Size]byte
}

// Loader discovers and parses route files on a filesystem.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	return &Loader{
		fs:        filesystem,
		pattern:   strings.TrimSpace(cfg.Pattern),
		recursive: cfg.Recursive,
	}
}

// LoadFile reads and parses a single route file.
func (l *Loader) LoadFile(ctx context.Context, name string) (*RouteFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	meta, body, err := ParseRouteDocument(data)
	if err != nil {
		return nil, fmt.Errorf("markdown loader %s: %w", name, err)
	}
	return &RouteFile{
		Path:        name,
		FrontMatter: meta,
		Body:        body,
		Checksum:    sha256.Sum256(data),
	}, nil
}

// LoadDirectory returns every matching route file under dir sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*RouteFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := path.Clean(strings.TrimSpace(dir))
	if root == "" {
		root = "."
	}

	var results []*RouteFile
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if current != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !l.matches(current) {
			return nil
		}
		file, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		results = append(results, file)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

func (l *Loader) matches(name string) bool {
	if l.pattern == "" {
		ext := strings.ToLower(path.Ext(name))
		return ext == ".md" || ext == ".markdown"
	}
	pattern := strings.ReplaceAll(l.pattern, "**/", "")
	target := path.Base(name)
	if strings.Contains(pattern, "/") {
		target = name
	}
	match, err := path.Match(pattern, target)
	return err == nil && match
}
