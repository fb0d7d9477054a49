package services

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/repos"
	"github.com/tonedial/calltone-backend/internal/storage"
	"github.com/tonedial/calltone-backend/internal/types"
)

// UploadInput carries everything the HTTP layer extracted from a multipart
// upload request.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Title       string
	Description string
	IsPublic    bool
	Tags        string
}

// ListFilter is the caller-facing subset of the repository filter.
type ListFilter struct {
	PublicOnly bool
	Category   types.ToneCategory
}

// CallToneService owns the asset lifecycle: upload and delete are its only
// mutating entry points.
type CallToneService interface {
	Upload(ctx context.Context, ownerID uuid.UUID, file io.Reader, in UploadInput) (*types.CallTone, error)
	Delete(ctx context.Context, requesterID, toneID uuid.UUID) error
	Get(ctx context.Context, toneID uuid.UUID) (*types.CallTone, error)
	ListVisible(ctx context.Context, requesterID uuid.UUID, filter ListFilter) ([]*types.CallTone, error)
	ListAIGenerated(ctx context.Context) ([]*types.CallTone, error)
}

type callToneService struct {
	db      *gorm.DB
	log     *logger.Logger
	backend storage.Backend
	policy  UploadPolicy
	tones   repos.CallToneRepo
}

func NewCallToneService(
	db *gorm.DB,
	baseLog *logger.Logger,
	backend storage.Backend,
	policy UploadPolicy,
	tones repos.CallToneRepo,
) CallToneService {
	return &callToneService{
		db:      db,
		log:     baseLog.With("service", "CallToneService"),
		backend: backend,
		policy:  policy,
		tones:   tones,
	}
}

func (s *callToneService) Upload(ctx context.Context, ownerID uuid.UUID, file io.Reader, in UploadInput) (*types.CallTone, error) {
	if ownerID == uuid.Nil {
		return nil, apierr.New(apierr.CodeValidation, "upload requires an owner")
	}
	if err := s.policy.Validate(in.ContentType, in.Size); err != nil {
		return nil, err
	}

	obj, err := s.backend.Store(ctx, file, in.FileName, in.ContentType)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.FileName
	}

	tone := &types.CallTone{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		FileURL:     obj.Locator,
		FileType:    in.ContentType,
		FileSize:    obj.Size,
		UploadedBy:  &ownerID,
		IsPublic:    in.IsPublic,
		Category:    types.ToneCategoryUserUploaded,
	}
	if err := tone.SetTags(ParseTags(in.Tags)); err != nil {
		return nil, apierr.Wrap(apierr.CodeValidation, err)
	}

	created, err := s.tones.Create(ctx, nil, tone)
	if err != nil {
		// The bytes are already stored; reclaim them best effort so a
		// failed record does not leak storage. The object-store backend
		// retains remote objects, which is the accepted gap.
		if rmErr := s.backend.Remove(ctx, obj.Locator); rmErr != nil {
			s.log.Warn("Orphaned stored object after create failure", "locator", obj.Locator, "error", rmErr)
		}
		return nil, err
	}

	s.log.Info("Call tone uploaded", "call_tone_id", created.ID, "owner_id", ownerID, "size", obj.Size)
	return created, nil
}

func (s *callToneService) Delete(ctx context.Context, requesterID, toneID uuid.UUID) error {
	tone, err := s.tones.GetByID(ctx, nil, toneID)
	if err != nil {
		return err
	}
	// Authorization before any side effect.
	if !tone.OwnedBy(requesterID) {
		return apierr.New(apierr.CodeForbidden, "not authorized to delete this call tone")
	}

	if err := s.backend.Remove(ctx, tone.FileURL); err != nil {
		// Metadata consistency wins over byte reclamation.
		s.log.Warn("Failed to remove stored bytes, deleting record anyway", "locator", tone.FileURL, "error", err)
	}

	if err := s.tones.DeleteByID(ctx, nil, toneID); err != nil {
		return err
	}
	s.log.Info("Call tone deleted", "call_tone_id", toneID, "requester_id", requesterID)
	return nil
}

func (s *callToneService) Get(ctx context.Context, toneID uuid.UUID) (*types.CallTone, error) {
	return s.tones.GetByID(ctx, nil, toneID)
}

func (s *callToneService) ListVisible(ctx context.Context, requesterID uuid.UUID, filter ListFilter) ([]*types.CallTone, error) {
	return s.tones.List(ctx, nil, repos.CallToneFilter{
		RequesterID: requesterID,
		PublicOnly:  filter.PublicOnly,
		Category:    filter.Category,
	})
}

func (s *callToneService) ListAIGenerated(ctx context.Context) ([]*types.CallTone, error) {
	return s.tones.ListAIGenerated(ctx, nil)
}

// ParseTags splits a comma-delimited tag string into a trimmed list,
// dropping empties and duplicates while preserving first-seen order.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
