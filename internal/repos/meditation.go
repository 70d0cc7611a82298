package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type MeditationSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ms *types.MeditationSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MeditationSession, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.MeditationSession, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.MeditationSession, error)
	ReplaceAudioAssets(ctx context.Context, tx *gorm.DB, ms *types.MeditationSession, assets []*types.MediaAsset) error
	ReplaceMediaAssets(ctx context.Context, tx *gorm.DB, ms *types.MeditationSession, assets []*types.MediaAsset) error
}

type meditationSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMeditationSessionRepo(db *gorm.DB, baseLog *logger.Logger) MeditationSessionRepo {
	repoLog := baseLog.With("repo", "MeditationSessionRepo")
	return &meditationSessionRepo{db: db, log: repoLog}
}

func (r *meditationSessionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *meditationSessionRepo) Create(ctx context.Context, tx *gorm.DB, ms *types.MeditationSession) error {
	return r.conn(tx).WithContext(ctx).Create(ms).Error
}

func (r *meditationSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MeditationSession, error) {
	var ms types.MeditationSession
	if err := r.conn(tx).WithContext(ctx).
		Preload("AudioAssets").
		Preload("MediaAssets").
		Where("id = ?", id).
		First(&ms).Error; err != nil {
		return nil, err
	}
	return &ms, nil
}

func (r *meditationSessionRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.MeditationSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *meditationSessionRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.MeditationSession{}).Error
}

func (r *meditationSessionRepo) ReplaceAudioAssets(ctx context.Context, tx *gorm.DB, ms *types.MeditationSession, assets []*types.MediaAsset) error {
	return r.conn(tx).WithContext(ctx).
		Model(ms).
		Association("AudioAssets").
		Replace(assets)
}

func (r *meditationSessionRepo) ReplaceMediaAssets(ctx context.Context, tx *gorm.DB, ms *types.MeditationSession, assets []*types.MediaAsset) error {
	return r.conn(tx).WithContext(ctx).
		Model(ms).
		Association("MediaAssets").
		Replace(assets)
}

func (r *meditationSessionRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.MeditationSession, error) {
	var results []*types.MeditationSession
	if err := r.conn(tx).WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *meditationSessionRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.MeditationSession, error) {
	var results []*types.MeditationSession
	if err := r.conn(tx).WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
