// Package indexer rebuilds the aggregated project index from a local
// directory tree of per-category project folders.
package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vincentvila/portfolio-backend/internal/projects/domain"
)

const metadataSuffix = "-metadata.json"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".svg":  true,
}

type Builder struct {
	log *zap.Logger
}

func NewBuilder(log *zap.Logger) *Builder {
	return &Builder{log: log}
}

// Build reconciles every category directory under rootDir into one listing:
// first the projects described by metadata files, then legacy image groups
// that never got one. Ordering within a category follows the directory
// listing, which is platform-dependent.
func (b *Builder) Build(rootDir string) ([]domain.Project, error) {
	entries, err := os.ReadDir(rootDir)
	if os.IsNotExist(err) {
		return []domain.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read projects dir: %w", err)
	}

	projects := []domain.Project{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		categoryProjects, err := b.buildCategory(rootDir, entry.Name())
		if err != nil {
			return nil, err
		}
		projects = append(projects, categoryProjects...)
	}
	return projects, nil
}

func (b *Builder) buildCategory(rootDir, category string) ([]domain.Project, error) {
	categoryPath := filepath.Join(rootDir, category)
	files, err := os.ReadDir(categoryPath)
	if err != nil {
		return nil, fmt.Errorf("read category %s: %w", category, err)
	}

	mapped := domain.NormalizeCategory(category)

	var names []string
	claimed := make(map[string]bool)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		names = append(names, f.Name())
		if strings.HasSuffix(f.Name(), metadataSuffix) {
			claimed[strings.TrimSuffix(f.Name(), metadataSuffix)] = true
		}
	}

	var projects []domain.Project
	for _, name := range names {
		if !strings.HasSuffix(name, metadataSuffix) {
			continue
		}
		project, err := b.readMetadata(filepath.Join(categoryPath, name), mapped)
		if err != nil {
			b.log.Warn("skipping unreadable metadata file",
				zap.String("file", name),
				zap.Error(err))
			continue
		}
		projects = append(projects, project)
	}

	projects = append(projects, b.groupLegacyImages(names, category, mapped, claimed)...)
	return projects, nil
}

// readMetadata loads one metadata file and normalizes it for the index:
// current category name, a synthetic id when absent, and the thumbnail
// resolved from the stored index (clamped) or the first image.
func (b *Builder) readMetadata(path, category string) (domain.Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Project{}, err
	}

	var project domain.Project
	if err := json.Unmarshal(raw, &project); err != nil {
		return domain.Project{}, err
	}

	project.Category = category
	if project.ID == "" {
		project.ID = domain.NewID()
	}
	if len(project.Images) > 0 {
		project.ThumbnailIndex = domain.ClampThumbnail(project.ThumbnailIndex, len(project.Images))
		project.Image = project.Images[project.ThumbnailIndex]
	}
	return project, nil
}

// groupLegacyImages synthesizes minimal projects for image files no
// metadata file claims, grouped by base name with a trailing -<number>
// stripped. The image URLs keep the raw on-disk category directory.
func (b *Builder) groupLegacyImages(names []string, category, mapped string, claimed map[string]bool) []domain.Project {
	var order []string
	groups := make(map[string]*domain.Project)

	for _, name := range names {
		if strings.HasSuffix(name, metadataSuffix) || !isImageFile(name) {
			continue
		}
		projectName := legacyProjectName(name)
		if claimed[projectName] {
			continue
		}

		imageURL := "/projects/" + category + "/" + name
		project, ok := groups[projectName]
		if !ok {
			project = &domain.Project{
				ID:       domain.NewID(),
				Title:    domain.TitleFromSlug(projectName),
				Category: mapped,
				Tags:     []string{},
				Images:   []string{},
			}
			groups[projectName] = project
			order = append(order, projectName)
		}
		project.Images = append(project.Images, imageURL)
		if len(project.Images) == 1 {
			project.Image = imageURL
		}
	}

	projects := make([]domain.Project, 0, len(order))
	for _, name := range order {
		projects = append(projects, *groups[name])
	}
	return projects
}

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// legacyProjectName strips the extension and a trailing -<number> so
// "neon-city-2.png" and "neon-city-1.png" land in the same group.
func legacyProjectName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.LastIndexByte(base, '-'); i > 0 {
		suffix := base[i+1:]
		if suffix != "" && isAllDigits(suffix) {
			return base[:i]
		}
	}
	return base
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// BackfillThumbnails writes thumbnailIndex 0 into metadata files that list
// multiple images but never had a thumbnail chosen, mirroring what the
// interactive selector defaults to. Returns how many files were updated.
func (b *Builder) BackfillThumbnails(rootDir string) (int, error) {
	entries, err := os.ReadDir(rootDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read projects dir: %w", err)
	}

	updated := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		categoryPath := filepath.Join(rootDir, entry.Name())
		files, err := os.ReadDir(categoryPath)
		if err != nil {
			return updated, fmt.Errorf("read category %s: %w", entry.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), metadataSuffix) {
				continue
			}
			path := filepath.Join(categoryPath, f.Name())
			changed, err := backfillFile(path)
			if err != nil {
				b.log.Warn("skipping metadata file",
					zap.String("file", f.Name()),
					zap.Error(err))
				continue
			}
			if changed {
				b.log.Info("set default thumbnail", zap.String("file", f.Name()))
				updated++
			}
		}
	}
	return updated, nil
}

func backfillFile(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return false, err
	}
	if _, ok := meta["thumbnailIndex"]; ok {
		return false, nil
	}
	images, _ := meta["images"].([]any)
	if len(images) <= 1 {
		return false, nil
	}

	meta["thumbnailIndex"] = 0
	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(path, out, 0o644)
}
