package types

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseProgress is one logged completion. At most one of the exercise
// references is set; none is also valid (free-form practice). Immutable
// once created except for corrective edits.
type ExerciseProgress struct {
	ID                  uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClientID            uuid.UUID          `gorm:"type:uuid;not null;index;index:idx_progress_unique,unique;column:client_id" json:"client_id"`
	Client              *UserProfile       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClientID;references:ID" json:"client,omitempty"`
	ExerciseID          *uuid.UUID         `gorm:"type:uuid;index;index:idx_progress_unique,unique;column:exercise_id" json:"exercise_id,omitempty"`
	Exercise            *Exercise          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExerciseID;references:ID" json:"exercise,omitempty"`
	BreathingExerciseID *uuid.UUID         `gorm:"type:uuid;index;index:idx_progress_unique,unique;column:breathing_exercise_id" json:"breathing_exercise_id,omitempty"`
	BreathingExercise   *BreathingExercise `gorm:"constraint:OnDelete:CASCADE;foreignKey:BreathingExerciseID;references:ID" json:"breathing_exercise,omitempty"`
	MeditationSessionID *uuid.UUID         `gorm:"type:uuid;index;index:idx_progress_unique,unique;column:meditation_session_id" json:"meditation_session_id,omitempty"`
	MeditationSession   *MeditationSession `gorm:"constraint:OnDelete:CASCADE;foreignKey:MeditationSessionID;references:ID" json:"meditation_session,omitempty"`
	CombinedRoutineID   *uuid.UUID         `gorm:"type:uuid;index;column:combined_routine_id" json:"combined_routine_id,omitempty"`
	CombinedRoutine     *CombinedRoutine   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CombinedRoutineID;references:ID" json:"combined_routine,omitempty"`
	CompletedAt         time.Time          `gorm:"not null;index;index:idx_progress_unique,unique;column:completed_at" json:"completed_at"`
	DurationSeconds     int                `gorm:"not null;default:0;column:duration_seconds" json:"duration_seconds"`
	DifficultyRating    *int               `gorm:"column:difficulty_rating" json:"difficulty_rating,omitempty"`
	Notes               string             `gorm:"column:notes" json:"notes"`
	Feedback            string             `gorm:"column:feedback" json:"feedback"`
	CreatedAt           time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time          `gorm:"not null;default:now()" json:"updated_at"`
}

func (ExerciseProgress) TableName() string { return "exercise_progress" }
