package types

import (
	"time"

	"github.com/google/uuid"
)

// ClientInstructorRelationship scopes routine assignments. Unique per
// (client, instructor) pair.
type ClientInstructorRelationship struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClientID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_client_instructor,unique;column:client_id" json:"client_id"`
	Client       *UserProfile `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClientID;references:ID" json:"client,omitempty"`
	InstructorID uuid.UUID    `gorm:"type:uuid;not null;index:idx_client_instructor,unique;column:instructor_id" json:"instructor_id"`
	Instructor   *UserProfile `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`
	Routines     []*Routine   `gorm:"many2many:relationship_routine" json:"routines,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:now()" json:"created_at"`
}

func (ClientInstructorRelationship) TableName() string { return "client_instructor_relationship" }
