// Package service implements the upload orchestrator: it turns a decoded
// form submission into files, a metadata record and an index entry on the
// content store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vincentvila/portfolio-backend/internal/multipart"
	"github.com/vincentvila/portfolio-backend/internal/projects/domain"
	"github.com/vincentvila/portfolio-backend/internal/store"
)

// ErrNoFiles rejects submissions that decoded zero files.
var ErrNoFiles = errors.New("no files uploaded")

const indexFile = "index.json"

// UploadService persists decoded submissions. Persistence is best-effort
// and non-transactional: files already written are not rolled back when a
// later step fails, and concurrent uploads race on the shared index
// (last write wins).
type UploadService struct {
	store store.ContentStore
	root  string
	log   *zap.Logger
}

func NewUploadService(st store.ContentStore, root string, log *zap.Logger) *UploadService {
	return &UploadService{
		store: st,
		root:  root,
		log:   log,
	}
}

// Upload derives storage paths from the submission, writes every image, the
// project's metadata file and the appended aggregated index, and returns
// the created project.
func (s *UploadService) Upload(ctx context.Context, form *multipart.Form) (*domain.Project, error) {
	if len(form.Files) == 0 {
		return nil, ErrNoFiles
	}

	category := fieldOr(form, "category", domain.CategoryOther)
	title := fieldOr(form, "title", "Untitled")
	slug := domain.Slugify(title)
	commitMessage := "Upload project: " + title

	imageURLs := make([]string, 0, len(form.Files))
	for i, file := range form.Files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext == "" {
			ext = ".png"
		}
		finalName := slug + ext
		if len(form.Files) > 1 {
			finalName = fmt.Sprintf("%s-%d%s", slug, i+1, ext)
		}

		repoPath := path.Join(s.root, category, finalName)
		if err := s.store.Put(ctx, repoPath, file.Content, commitMessage); err != nil {
			return nil, fmt.Errorf("store image %s: %w", repoPath, err)
		}
		s.log.Info("stored project image",
			zap.String("path", repoPath),
			zap.Int("bytes", len(file.Content)))

		imageURLs = append(imageURLs, "/projects/"+category+"/"+finalName)
	}

	requested := 0
	if raw, ok := form.Fields["thumbnailIndex"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			requested = n
		}
	}
	thumbnailIndex := domain.ClampThumbnail(requested, len(imageURLs))

	project := domain.Project{
		ID:             domain.NewID(),
		Title:          title,
		Category:       category,
		Description:    form.Fields["description"],
		Link:           form.Fields["link"],
		Tags:           domain.ParseTags(form.Fields["tags"]),
		Images:         imageURLs,
		Image:          imageURLs[thumbnailIndex],
		ThumbnailIndex: thumbnailIndex,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.writeMetadata(ctx, category, slug, project, commitMessage); err != nil {
		return nil, err
	}
	if err := s.appendToIndex(ctx, project, commitMessage); err != nil {
		return nil, err
	}

	return &project, nil
}

// writeMetadata stores the per-project metadata file next to its images.
// The id and resolved thumbnail path live only in the aggregated index.
func (s *UploadService) writeMetadata(ctx context.Context, category, slug string, project domain.Project, message string) error {
	meta := project
	meta.ID = ""
	meta.Image = ""

	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	metaPath := path.Join(s.root, category, slug+"-metadata.json")
	if err := s.store.Put(ctx, metaPath, payload, message); err != nil {
		return fmt.Errorf("store metadata %s: %w", metaPath, err)
	}
	return nil
}

// appendToIndex is a read-modify-write of the shared index file. A missing
// or unparseable index starts over empty. Two concurrent uploads can both
// read the same revision and the later write silently drops the earlier
// append.
func (s *UploadService) appendToIndex(ctx context.Context, project domain.Project, message string) error {
	indexPath := path.Join(s.root, indexFile)

	var index []domain.Project
	existing, err := s.store.Get(ctx, indexPath)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	if existing != nil {
		if err := json.Unmarshal(existing.Content, &index); err != nil {
			s.log.Warn("index file unparseable, rebuilding from empty",
				zap.String("path", indexPath),
				zap.Error(err))
			index = nil
		}
	}

	index = append(index, project)

	payload, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := s.store.Put(ctx, indexPath, payload, message); err != nil {
		return fmt.Errorf("store index: %w", err)
	}
	return nil
}

// Listing returns the aggregated index as stored, or an empty slice when
// the index file does not exist yet.
func (s *UploadService) Listing(ctx context.Context) ([]domain.Project, error) {
	existing, err := s.store.Get(ctx, path.Join(s.root, indexFile))
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if existing == nil {
		return []domain.Project{}, nil
	}

	var index []domain.Project
	if err := json.Unmarshal(existing.Content, &index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return index, nil
}

func fieldOr(form *multipart.Form, name, fallback string) string {
	if v := form.Fields[name]; v != "" {
		return v
	}
	return fallback
}
