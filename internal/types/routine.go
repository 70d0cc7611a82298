package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Routine struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string         `gorm:"not null;column:name" json:"name"`
	Description  string         `gorm:"column:description" json:"description"`
	InstructorID uuid.UUID      `gorm:"type:uuid;not null;index;column:instructor_id" json:"instructor_id"`
	Instructor   *UserProfile   `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`
	Exercises    []*Exercise    `gorm:"foreignKey:RoutineID;references:ID" json:"exercises,omitempty"`
	IsActive     bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Routine) TableName() string { return "routine" }
