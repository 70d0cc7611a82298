package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleClient     = "client"
)

// UserProfile is materialized from the hosted identity provider on first
// authenticated request. ExternalID is the provider's subject claim.
type UserProfile struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExternalID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:external_id" json:"external_id"`
	Email      string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Role       string    `gorm:"not null;default:'client';column:role" json:"role"`
	FullName   string    `gorm:"column:full_name" json:"full_name"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

func (u *UserProfile) IsInstructor() bool {
	return u != nil && (u.Role == RoleInstructor || u.Role == RoleAdmin)
}
