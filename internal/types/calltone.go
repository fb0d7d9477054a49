package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ToneCategory string

const (
	ToneCategoryUserUploaded ToneCategory = "user-uploaded"
	ToneCategoryAIGenerated  ToneCategory = "ai-generated"
	ToneCategoryDefault      ToneCategory = "default"
)

func (c ToneCategory) Valid() bool {
	switch c {
	case ToneCategoryUserUploaded, ToneCategoryAIGenerated, ToneCategoryDefault:
		return true
	}
	return false
}

// CallTone is a stored ringback tone: metadata plus the locator of its bytes.
// Records are immutable after creation; changing a tone means delete and
// re-upload.
type CallTone struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `json:"description,omitempty"`
	FileURL         string         `gorm:"column:file_url;not null" json:"file_url"`
	FileType        string         `gorm:"column:file_type;not null" json:"file_type"`
	FileSize        int64          `gorm:"column:file_size;not null" json:"file_size"`
	DurationSeconds *float64       `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	UploadedBy      *uuid.UUID     `gorm:"type:uuid;index" json:"uploaded_by,omitempty"`
	IsPublic        bool           `gorm:"not null;default:false" json:"is_public"`
	Category        ToneCategory   `gorm:"not null;default:'user-uploaded';index" json:"category"`
	Tags            datatypes.JSON `gorm:"column:tags" json:"tags,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
}

func (CallTone) TableName() string { return "call_tone" }

func (t *CallTone) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether userID owns the tone. Ownerless tones (seeded
// categories) are owned by nobody.
func (t *CallTone) OwnedBy(userID uuid.UUID) bool {
	return t.UploadedBy != nil && *t.UploadedBy == userID
}

// SetTags stores tags as a JSON array, preserving insertion order.
func (t *CallTone) SetTags(tags []string) error {
	if len(tags) == 0 {
		t.Tags = nil
		return nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	t.Tags = datatypes.JSON(raw)
	return nil
}

func (t *CallTone) GetTags() []string {
	if len(t.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(t.Tags, &tags); err != nil {
		return nil
	}
	return tags
}
