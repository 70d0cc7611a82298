package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type MediaAssetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, asset *types.MediaAsset) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MediaAsset, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MediaAsset, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID, assetType string) ([]*types.MediaAsset, error)
}

type mediaAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaAssetRepo(db *gorm.DB, baseLog *logger.Logger) MediaAssetRepo {
	repoLog := baseLog.With("repo", "MediaAssetRepo")
	return &mediaAssetRepo{db: db, log: repoLog}
}

func (r *mediaAssetRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *mediaAssetRepo) Create(ctx context.Context, tx *gorm.DB, asset *types.MediaAsset) error {
	return r.conn(tx).WithContext(ctx).Create(asset).Error
}

func (r *mediaAssetRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MediaAsset, error) {
	var asset types.MediaAsset
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *mediaAssetRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MediaAsset, error) {
	var results []*types.MediaAsset
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *mediaAssetRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.MediaAsset{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *mediaAssetRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.MediaAsset{}).Error
}

func (r *mediaAssetRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID, assetType string) ([]*types.MediaAsset, error) {
	query := r.conn(tx).WithContext(ctx).
		Where("instructor_id = ? AND is_active = ?", instructorID, true)
	if assetType != "" {
		query = query.Where("asset_type = ?", assetType)
	}
	var results []*types.MediaAsset
	if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
