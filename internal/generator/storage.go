package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteCategory tags an artifact write so storages and logs can tell pages
// from the site-level files.
type WriteCategory string

const (
	CategoryPage     WriteCategory = "page"
	CategoryRoutes   WriteCategory = "routes"
	CategorySitemap  WriteCategory = "sitemap"
	CategoryRobots   WriteCategory = "robots"
	CategoryManifest WriteCategory = "manifest"
)

// WriteRequest describes a file write routed through a Storage.
type WriteRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    WriteCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// Storage persists generated artifacts. Paths are slash separated and
// relative to the storage root.
type Storage interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteRequest) error
	// ReadFile returns an error matching os.ErrNotExist when path is absent.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// NewFilesystemStorage returns a Storage rooted at root on the local disk.
func NewFilesystemStorage(root string) Storage {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	return &filesystemStorage{root: root}
}

type filesystemStorage struct {
	root string
}

func (s *filesystemStorage) EnsureDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	return os.MkdirAll(s.abs(path), 0o755)
}

func (s *filesystemStorage) WriteFile(ctx context.Context, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	full := s.abs(req.Path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	file, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, req.Content); err != nil {
		file.Close()
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	return file.Close()
}

func (s *filesystemStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.abs(path))
}

func (s *filesystemStorage) abs(rel string) string {
	rel = strings.TrimLeft(strings.TrimSpace(rel), "/")
	if rel == "" {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// artifactWriter is the write half of Storage; dry runs swap in noopWriter.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteRequest) error
}

func newArtifactWriter(storage Storage, dryRun bool) artifactWriter {
	if storage == nil || dryRun {
		return noopWriter{}
	}
	return storage
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(_ context.Context, req WriteRequest) error {
	if req.Content != nil {
		_, _ = io.Copy(io.Discard, req.Content)
	}
	return nil
}
