package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AssetTypeImage     = "image"
	AssetTypeVideo     = "video"
	AssetTypeAudio     = "audio"
	AssetTypeAnimation = "animation"
)

func ValidAssetType(t string) bool {
	switch t {
	case AssetTypeImage, AssetTypeVideo, AssetTypeAudio, AssetTypeAnimation:
		return true
	}
	return false
}

// MediaAsset only exists after its upload session reached completed.
type MediaAsset struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name            string         `gorm:"not null;column:name" json:"name"`
	AssetType       string         `gorm:"not null;column:asset_type" json:"asset_type"`
	StoragePath     string         `gorm:"not null;column:storage_path" json:"storage_path"`
	AccessURL       string         `gorm:"column:access_url" json:"access_url"`
	ThumbnailURL    string         `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	SizeBytes       int64          `gorm:"column:size_bytes" json:"size_bytes"`
	DurationSeconds *int           `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	InstructorID    uuid.UUID      `gorm:"type:uuid;not null;index;column:instructor_id" json:"instructor_id"`
	Instructor      *UserProfile   `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`
	IsActive        bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MediaAsset) TableName() string { return "media_asset" }
