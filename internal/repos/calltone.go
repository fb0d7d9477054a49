package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/types"
)

// CallToneFilter narrows List. When PublicOnly is false the result is the
// union of public tones and the requester's own tones, regardless of each
// tone's visibility.
type CallToneFilter struct {
	RequesterID uuid.UUID
	PublicOnly  bool
	Category    types.ToneCategory
}

type CallToneRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tone *types.CallTone) (*types.CallTone, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CallTone, error)
	List(ctx context.Context, tx *gorm.DB, filter CallToneFilter) ([]*types.CallTone, error)
	ListAIGenerated(ctx context.Context, tx *gorm.DB) ([]*types.CallTone, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ExistsByTitleAndCategory(ctx context.Context, tx *gorm.DB, title string, category types.ToneCategory) (bool, error)
}

type callToneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCallToneRepo(db *gorm.DB, baseLog *logger.Logger) CallToneRepo {
	return &callToneRepo{db: db, log: baseLog.With("repo", "CallToneRepo")}
}

func (r *callToneRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *callToneRepo) Create(ctx context.Context, tx *gorm.DB, tone *types.CallTone) (*types.CallTone, error) {
	if tone.Title == "" {
		return nil, apierr.New(apierr.CodeValidation, "title is required")
	}
	if tone.FileURL == "" || tone.FileType == "" || tone.FileSize <= 0 {
		return nil, apierr.New(apierr.CodeValidation, "file_url, file_type and file_size are required")
	}
	if tone.Category == types.ToneCategoryUserUploaded && tone.UploadedBy == nil {
		return nil, apierr.New(apierr.CodeValidation, "user-uploaded tones require an owner")
	}
	if err := r.conn(tx).WithContext(ctx).Create(tone).Error; err != nil {
		return nil, err
	}
	return tone, nil
}

func (r *callToneRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CallTone, error) {
	var tone types.CallTone
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&tone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(apierr.CodeNotFound, "call tone %s not found", id)
		}
		return nil, err
	}
	return &tone, nil
}

func (r *callToneRepo) List(ctx context.Context, tx *gorm.DB, filter CallToneFilter) ([]*types.CallTone, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.CallTone{})

	if filter.PublicOnly {
		q = q.Where("is_public = ?", true)
	} else {
		q = q.Where("is_public = ? OR uploaded_by = ?", true, filter.RequesterID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var tones []*types.CallTone
	if err := q.Order("created_at DESC").Find(&tones).Error; err != nil {
		return nil, err
	}
	return tones, nil
}

func (r *callToneRepo) ListAIGenerated(ctx context.Context, tx *gorm.DB) ([]*types.CallTone, error) {
	var tones []*types.CallTone
	err := r.conn(tx).WithContext(ctx).
		Where("category = ? AND is_public = ?", types.ToneCategoryAIGenerated, true).
		Order("created_at DESC").
		Find(&tones).Error
	if err != nil {
		return nil, err
	}
	return tones, nil
}

// DeleteByID is a hard delete; deleting an absent row is a no-op so
// concurrent deletes stay idempotent.
func (r *callToneRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.CallTone{}).Error
}

func (r *callToneRepo) ExistsByTitleAndCategory(ctx context.Context, tx *gorm.DB, title string, category types.ToneCategory) (bool, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).Model(&types.CallTone{}).
		Where("title = ? AND category = ?", title, category).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
