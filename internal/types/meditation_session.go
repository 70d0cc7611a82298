package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MeditationSession struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name            string         `gorm:"not null;column:name" json:"name"`
	Description     string         `gorm:"column:description" json:"description"`
	InstructorID    uuid.UUID      `gorm:"type:uuid;not null;index;column:instructor_id" json:"instructor_id"`
	Instructor      *UserProfile   `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`
	Script          string         `gorm:"column:script" json:"script"`
	DurationSeconds int            `gorm:"not null;default:600;column:duration_seconds" json:"duration_seconds"`
	AudioAssets     []*MediaAsset  `gorm:"many2many:meditation_session_audio" json:"audio_assets,omitempty"`
	MediaAssets     []*MediaAsset  `gorm:"many2many:meditation_session_media" json:"media_assets,omitempty"`
	IsActive        bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MeditationSession) TableName() string { return "meditation_session" }
