package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Exercise struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RoutineID    uuid.UUID      `gorm:"type:uuid;not null;index;column:routine_id" json:"routine_id"`
	Routine      *Routine       `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoutineID;references:ID" json:"routine,omitempty"`
	Name         string         `gorm:"not null;column:name" json:"name"`
	Instructions string         `gorm:"column:instructions" json:"instructions"`
	SortOrder    int            `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	MediaAssets  []*MediaAsset  `gorm:"many2many:exercise_media" json:"media_assets,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Exercise) TableName() string { return "exercise" }
