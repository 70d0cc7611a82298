package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BreathingExercise struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string         `gorm:"not null;column:name" json:"name"`
	Description  string         `gorm:"column:description" json:"description"`
	InstructorID uuid.UUID      `gorm:"type:uuid;not null;index;column:instructor_id" json:"instructor_id"`
	Instructor   *UserProfile   `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`
	// Pattern holds the breath phase configuration, e.g. [inhale, hold, exhale, hold].
	Pattern      datatypes.JSON `gorm:"type:jsonb;column:pattern" json:"pattern"`
	TimerSeconds int            `gorm:"not null;default:60;column:timer_seconds" json:"timer_seconds"`
	MediaAssets  []*MediaAsset  `gorm:"many2many:breathing_exercise_media" json:"media_assets,omitempty"`
	IsActive     bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (BreathingExercise) TableName() string { return "breathing_exercise" }
