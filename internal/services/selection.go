package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/repos"
	"github.com/tonedial/calltone-backend/internal/types"
)

// SelectionService maintains each user's pointer to their active call tone.
// Selection is not ownership-gated: any resolvable tone may be selected,
// which is how users pick AI tones and other users' public uploads.
type SelectionService interface {
	Select(ctx context.Context, userID, toneID uuid.UUID) (*types.CallTone, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Selected(ctx context.Context, userID uuid.UUID) (*types.CallTone, error)
}

type selectionService struct {
	db    *gorm.DB
	log   *logger.Logger
	tones repos.CallToneRepo
	users repos.UserRepo
}

func NewSelectionService(db *gorm.DB, baseLog *logger.Logger, tones repos.CallToneRepo, users repos.UserRepo) SelectionService {
	return &selectionService{
		db:    db,
		log:   baseLog.With("service", "SelectionService"),
		tones: tones,
		users: users,
	}
}

func (s *selectionService) Select(ctx context.Context, userID, toneID uuid.UUID) (*types.CallTone, error) {
	tone, err := s.tones.GetByID(ctx, nil, toneID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetSelectedCallTone(ctx, nil, userID, &tone.ID); err != nil {
		return nil, err
	}
	s.log.Info("Call tone selected", "user_id", userID, "call_tone_id", toneID)
	return tone, nil
}

func (s *selectionService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.users.SetSelectedCallTone(ctx, nil, userID, nil)
}

func (s *selectionService) Selected(ctx context.Context, userID uuid.UUID) (*types.CallTone, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user.SelectedCallToneID == nil {
		return nil, nil
	}
	return s.tones.GetByID(ctx, nil, *user.SelectedCallToneID)
}
