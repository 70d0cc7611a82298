package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type ProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.ExerciseProgress) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExerciseProgress, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.ExerciseProgress, error)
	ListByInstructorClients(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.ExerciseProgress, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	repoLog := baseLog.With("repo", "ProgressRepo")
	return &progressRepo{db: db, log: repoLog}
}

func (r *progressRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *progressRepo) Create(ctx context.Context, tx *gorm.DB, record *types.ExerciseProgress) error {
	return r.conn(tx).WithContext(ctx).Create(record).Error
}

func (r *progressRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExerciseProgress, error) {
	var record types.ExerciseProgress
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *progressRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.ExerciseProgress{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *progressRepo) ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.ExerciseProgress, error) {
	var results []*types.ExerciseProgress
	if err := r.conn(tx).WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *progressRepo) ListByInstructorClients(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.ExerciseProgress, error) {
	var results []*types.ExerciseProgress
	if err := r.conn(tx).WithContext(ctx).
		Joins("JOIN client_instructor_relationship rel ON rel.client_id = exercise_progress.client_id").
		Where("rel.instructor_id = ?", instructorID).
		Order("exercise_progress.completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
