package generator

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	RoutesFileName  = "routes.json"
	SitemapFileName = "sitemap.xml"
	RobotsFileName  = "robots.txt"
	// RemotePagesDir is the repository and URL directory that holds pages,
	// independent of the local output directory.
	RemotePagesDir = "routes"
)

// Artifact is a generated file together with the repository path it is
// published under.
type Artifact struct {
	Category  WriteCategory
	Slug      string
	LocalPath string
	RepoPath  string
	Checksum  string
}

// RemotePagePath returns the repository path of the page for slug.
func RemotePagePath(slug string) string {
	return path.Join(RemotePagesDir, slug+".html")
}

// PlanArtifacts lists the files a build with cfg produces for slugs, in
// publish order: routes.json, sitemap.xml, robots.txt when enabled, then one
// page per slug.
func PlanArtifacts(cfg Config, slugs []string) []Artifact {
	cfg = cfg.withDefaults()
	artifacts := make([]Artifact, 0, len(slugs)+3)
	artifacts = append(artifacts,
		Artifact{Category: CategoryRoutes, LocalPath: cfg.localPath(RoutesFileName), RepoPath: RoutesFileName},
		Artifact{Category: CategorySitemap, LocalPath: cfg.localPath(SitemapFileName), RepoPath: SitemapFileName},
	)
	if cfg.GenerateRobots {
		artifacts = append(artifacts, Artifact{Category: CategoryRobots, LocalPath: cfg.localPath(RobotsFileName), RepoPath: RobotsFileName})
	}
	for _, slug := range slugs {
		artifacts = append(artifacts, Artifact{
			Category:  CategoryPage,
			Slug:      slug,
			LocalPath: cfg.localPath(cfg.pagePath(slug)),
			RepoPath:  RemotePagePath(slug),
		})
	}
	return artifacts
}

func (cfg Config) pagePath(slug string) string {
	return joinOutputPath(cfg.OutputDir, slug+".html")
}

func (cfg Config) localPath(rel string) string {
	return filepath.Join(cfg.RootDir, filepath.FromSlash(rel))
}

func joinOutputPath(base string, rel string) string {
	if strings.Trim(strings.TrimSpace(base), "/.") == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.Trim(base, "/"), rel)
}
