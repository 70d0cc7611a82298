package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type BreathingExerciseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, be *types.BreathingExercise) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BreathingExercise, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.BreathingExercise, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.BreathingExercise, error)
	ReplaceMediaAssets(ctx context.Context, tx *gorm.DB, be *types.BreathingExercise, assets []*types.MediaAsset) error
}

type breathingExerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBreathingExerciseRepo(db *gorm.DB, baseLog *logger.Logger) BreathingExerciseRepo {
	repoLog := baseLog.With("repo", "BreathingExerciseRepo")
	return &breathingExerciseRepo{db: db, log: repoLog}
}

func (r *breathingExerciseRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *breathingExerciseRepo) Create(ctx context.Context, tx *gorm.DB, be *types.BreathingExercise) error {
	return r.conn(tx).WithContext(ctx).Create(be).Error
}

func (r *breathingExerciseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BreathingExercise, error) {
	var be types.BreathingExercise
	if err := r.conn(tx).WithContext(ctx).
		Preload("MediaAssets").
		Where("id = ?", id).
		First(&be).Error; err != nil {
		return nil, err
	}
	return &be, nil
}

func (r *breathingExerciseRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.BreathingExercise{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *breathingExerciseRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.BreathingExercise{}).Error
}

func (r *breathingExerciseRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.BreathingExercise, error) {
	var results []*types.BreathingExercise
	if err := r.conn(tx).WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *breathingExerciseRepo) ReplaceMediaAssets(ctx context.Context, tx *gorm.DB, be *types.BreathingExercise, assets []*types.MediaAsset) error {
	return r.conn(tx).WithContext(ctx).
		Model(be).
		Association("MediaAssets").
		Replace(assets)
}

func (r *breathingExerciseRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.BreathingExercise, error) {
	var results []*types.BreathingExercise
	if err := r.conn(tx).WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
