package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/repos"
	"github.com/tonedial/calltone-backend/internal/storage"
	"github.com/tonedial/calltone-backend/internal/types"
)

// SeedManifest describes the platform-curated tone pool: the AI-generated
// tones users can browse plus the default ringback set. Seeded tones are
// public and ownerless; this path is the only way non-user-uploaded
// categories come into existence.
type SeedManifest struct {
	Tones []SeedTone `yaml:"tones"`
}

type SeedTone struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	File        string   `yaml:"file"`
	ContentType string   `yaml:"content_type"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
}

type SeedService interface {
	SeedFromManifest(ctx context.Context, manifestPath string) error
}

type seedService struct {
	db      *gorm.DB
	log     *logger.Logger
	backend storage.Backend
	policy  UploadPolicy
	tones   repos.CallToneRepo
}

func NewSeedService(db *gorm.DB, baseLog *logger.Logger, backend storage.Backend, policy UploadPolicy, tones repos.CallToneRepo) SeedService {
	return &seedService{
		db:      db,
		log:     baseLog.With("service", "SeedService"),
		backend: backend,
		policy:  policy,
		tones:   tones,
	}
}

func (s *seedService) SeedFromManifest(ctx context.Context, manifestPath string) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read seed manifest: %w", err)
	}
	var manifest SeedManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return fmt.Errorf("parse seed manifest: %w", err)
	}

	baseDir := filepath.Dir(manifestPath)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, entry := range manifest.Tones {
		g.Go(func() error {
			return s.seedOne(gctx, baseDir, entry)
		})
	}
	return g.Wait()
}

func (s *seedService) seedOne(ctx context.Context, baseDir string, entry SeedTone) error {
	category := types.ToneCategory(entry.Category)
	if !category.Valid() || category == types.ToneCategoryUserUploaded {
		return fmt.Errorf("seed tone %q: category %q is not seedable", entry.Title, entry.Category)
	}
	if entry.Title == "" {
		return fmt.Errorf("seed tone with file %q: title is required", entry.File)
	}

	exists, err := s.tones.ExistsByTitleAndCategory(ctx, nil, entry.Title, category)
	if err != nil {
		return err
	}
	if exists {
		s.log.Debug("Seed tone already present, skipping", "title", entry.Title)
		return nil
	}

	path := entry.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("seed tone %q: open %q: %w", entry.Title, entry.File, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("seed tone %q: stat: %w", entry.Title, err)
	}
	if err := s.policy.Validate(entry.ContentType, info.Size()); err != nil {
		return fmt.Errorf("seed tone %q: %w", entry.Title, err)
	}

	obj, err := s.backend.Store(ctx, f, filepath.Base(path), entry.ContentType)
	if err != nil {
		return fmt.Errorf("seed tone %q: %w", entry.Title, err)
	}

	tone := &types.CallTone{
		Title:       entry.Title,
		Description: entry.Description,
		FileURL:     obj.Locator,
		FileType:    entry.ContentType,
		FileSize:    obj.Size,
		IsPublic:    true,
		Category:    category,
	}
	if err := tone.SetTags(entry.Tags); err != nil {
		return apierr.Wrap(apierr.CodeValidation, err)
	}
	if _, err := s.tones.Create(ctx, nil, tone); err != nil {
		if rmErr := s.backend.Remove(ctx, obj.Locator); rmErr != nil {
			s.log.Warn("Orphaned seed object after create failure", "locator", obj.Locator, "error", rmErr)
		}
		return fmt.Errorf("seed tone %q: %w", entry.Title, err)
	}

	s.log.Info("Seeded call tone", "title", entry.Title, "category", category)
	return nil
}
