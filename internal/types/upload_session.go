package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadVerifying UploadStatus = "verifying"
	UploadCompleted UploadStatus = "completed"
	UploadFailed    UploadStatus = "failed"
)

func (s UploadStatus) Terminal() bool {
	return s == UploadCompleted || s == UploadFailed
}

func ValidUploadStatus(s UploadStatus) bool {
	switch s {
	case UploadPending, UploadUploading, UploadVerifying, UploadCompleted, UploadFailed:
		return true
	}
	return false
}

// UploadSession tracks one file from policy issuance through verification.
// Mutated only through the upload service's guarded transitions.
type UploadSession struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UploadID     uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null;column:upload_id" json:"upload_id"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null;index;column:owner_id" json:"owner_id"`
	Owner        *UserProfile   `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	FileName     string         `gorm:"not null;column:file_name" json:"file_name"`
	AssetType    string         `gorm:"not null;column:asset_type" json:"asset_type"`
	TotalSize    int64          `gorm:"not null;default:0;column:total_size" json:"total_size"`
	UploadedSize int64          `gorm:"not null;default:0;column:uploaded_size" json:"uploaded_size"`
	Status       UploadStatus   `gorm:"not null;default:'pending';column:status" json:"status"`
	ErrorMessage string         `gorm:"column:error_message" json:"error_message"`
	Metadata     datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	CompletedAt  *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (UploadSession) TableName() string { return "upload_session" }

// ProgressPercentage is floor(100*uploaded/total) clamped to [0,100];
// 0 when the declared total is unknown.
func (s *UploadSession) ProgressPercentage() int {
	if s == nil || s.TotalSize == 0 {
		return 0
	}
	pct := int(s.UploadedSize * 100 / s.TotalSize)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
