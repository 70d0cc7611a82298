package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type UploadSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.UploadSession) error
	GetByUploadID(ctx context.Context, tx *gorm.DB, uploadID uuid.UUID) (*types.UploadSession, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.UploadSession, error)
}

type uploadSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUploadSessionRepo(db *gorm.DB, baseLog *logger.Logger) UploadSessionRepo {
	repoLog := baseLog.With("repo", "UploadSessionRepo")
	return &uploadSessionRepo{db: db, log: repoLog}
}

func (r *uploadSessionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *uploadSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.UploadSession) error {
	return r.conn(tx).WithContext(ctx).Create(session).Error
}

func (r *uploadSessionRepo) GetByUploadID(ctx context.Context, tx *gorm.DB, uploadID uuid.UUID) (*types.UploadSession, error) {
	var session types.UploadSession
	if err := r.conn(tx).WithContext(ctx).
		Where("upload_id = ?", uploadID).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *uploadSessionRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.UploadSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *uploadSessionRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.UploadSession, error) {
	var results []*types.UploadSession
	if err := r.conn(tx).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
