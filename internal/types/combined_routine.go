package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CombinedRoutine sequences yoga, breathing, and meditation content into one flow.
type CombinedRoutine struct {
	ID                 uuid.UUID            `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name               string               `gorm:"not null;column:name" json:"name"`
	Description        string               `gorm:"column:description" json:"description"`
	InstructorID       uuid.UUID            `gorm:"type:uuid;not null;index;column:instructor_id" json:"instructor_id"`
	Instructor         *UserProfile         `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`
	Routines           []*Routine           `gorm:"many2many:combined_routine_routine" json:"routines,omitempty"`
	BreathingExercises []*BreathingExercise `gorm:"many2many:combined_routine_breathing" json:"breathing_exercises,omitempty"`
	MeditationSessions []*MeditationSession `gorm:"many2many:combined_routine_meditation" json:"meditation_sessions,omitempty"`
	TransitionNotes    string               `gorm:"column:transition_notes" json:"transition_notes"`
	IsActive           bool                 `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt          time.Time            `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time            `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt       `gorm:"index" json:"deleted_at,omitempty"`
}

func (CombinedRoutine) TableName() string { return "combined_routine" }
