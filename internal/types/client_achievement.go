package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClientAchievement is created exactly once per (client, achievement) pair.
// The awarding pass never mutates or deletes rows here; the unique index is
// the arbiter under concurrent award runs.
type ClientAchievement struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClientID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_client_achievement,unique;column:client_id" json:"client_id"`
	Client        *UserProfile   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClientID;references:ID" json:"client,omitempty"`
	AchievementID uuid.UUID      `gorm:"type:uuid;not null;index:idx_client_achievement,unique;column:achievement_id" json:"achievement_id"`
	Achievement   *Achievement   `gorm:"constraint:OnDelete:CASCADE;foreignKey:AchievementID;references:ID" json:"achievement,omitempty"`
	EarnedAt      time.Time      `gorm:"not null;default:now();column:earned_at" json:"earned_at"`
	ProgressData  datatypes.JSON `gorm:"type:jsonb;column:progress_data" json:"progress_data"`
}

func (ClientAchievement) TableName() string { return "client_achievement" }
