package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type ExerciseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, exercise *types.Exercise) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByRoutine(ctx context.Context, tx *gorm.DB, routineID uuid.UUID) ([]*types.Exercise, error)
	ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.Exercise, error)
	ListAssignedToClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.Exercise, error)
	ReplaceMediaAssets(ctx context.Context, tx *gorm.DB, exercise *types.Exercise, assets []*types.MediaAsset) error
}

type exerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	repoLog := baseLog.With("repo", "ExerciseRepo")
	return &exerciseRepo{db: db, log: repoLog}
}

func (r *exerciseRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *exerciseRepo) Create(ctx context.Context, tx *gorm.DB, exercise *types.Exercise) error {
	return r.conn(tx).WithContext(ctx).Create(exercise).Error
}

func (r *exerciseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error) {
	var exercise types.Exercise
	if err := r.conn(tx).WithContext(ctx).
		Preload("MediaAssets").
		Preload("Routine").
		Where("id = ?", id).
		First(&exercise).Error; err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (r *exerciseRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Exercise{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *exerciseRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Exercise{}).Error
}

func (r *exerciseRepo) ListByRoutine(ctx context.Context, tx *gorm.DB, routineID uuid.UUID) ([]*types.Exercise, error) {
	var results []*types.Exercise
	if err := r.conn(tx).WithContext(ctx).
		Where("routine_id = ?", routineID).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.Exercise, error) {
	var results []*types.Exercise
	if err := r.conn(tx).WithContext(ctx).
		Joins("JOIN routine ON routine.id = exercise.routine_id").
		Where("routine.instructor_id = ?", instructorID).
		Order("exercise.sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepo) ListAssignedToClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.Exercise, error) {
	var results []*types.Exercise
	if err := r.conn(tx).WithContext(ctx).
		Distinct("exercise.*").
		Joins("JOIN routine ON routine.id = exercise.routine_id").
		Joins("JOIN relationship_routine rr ON rr.routine_id = routine.id").
		Joins("JOIN client_instructor_relationship rel ON rel.id = rr.client_instructor_relationship_id").
		Where("rel.client_id = ? AND routine.is_active = ?", clientID, true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepo) ReplaceMediaAssets(ctx context.Context, tx *gorm.DB, exercise *types.Exercise, assets []*types.MediaAsset) error {
	return r.conn(tx).WithContext(ctx).
		Model(exercise).
		Association("MediaAssets").
		Replace(assets)
}
