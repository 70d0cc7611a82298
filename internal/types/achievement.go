package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AchievementType is a closed set. Evaluation dispatches on it; values
// outside the set never satisfy.
type AchievementType string

const (
	AchievementExerciseCount   AchievementType = "exercise_count"
	AchievementDuration        AchievementType = "duration"
	AchievementConsistency     AchievementType = "consistency"
	AchievementDifficulty      AchievementType = "difficulty"
	AchievementCombinedRoutine AchievementType = "combined_routine"
)

func ValidAchievementType(t AchievementType) bool {
	switch t {
	case AchievementExerciseCount, AchievementDuration, AchievementConsistency,
		AchievementDifficulty, AchievementCombinedRoutine:
		return true
	}
	return false
}

// AchievementCriteria is the declarative criteria document stored in the
// criteria JSONB column. Which fields apply depends on the achievement type.
type AchievementCriteria struct {
	RequiredCount      int        `json:"required_count,omitempty"`
	ExerciseType       string     `json:"exercise_type,omitempty"` // exercise | breathing | meditation
	RequiredDuration   int        `json:"required_duration,omitempty"`
	TimePeriod         string     `json:"time_period,omitempty"` // day | week | month
	RequiredDays       int        `json:"required_days,omitempty"`
	Consecutive        bool       `json:"consecutive,omitempty"`
	RequiredDifficulty int        `json:"required_difficulty,omitempty"`
	RoutineID          *uuid.UUID `json:"routine_id,omitempty"`
}

type Achievement struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name            string          `gorm:"not null;column:name" json:"name"`
	Description     string          `gorm:"column:description" json:"description"`
	AchievementType AchievementType `gorm:"not null;column:achievement_type" json:"achievement_type"`
	IconURL         string          `gorm:"column:icon_url" json:"icon_url"`
	Criteria        datatypes.JSON  `gorm:"type:jsonb;not null;column:criteria" json:"criteria"`
	IsActive        bool            `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt       time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Achievement) TableName() string { return "achievement" }
