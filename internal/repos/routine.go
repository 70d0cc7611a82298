package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type RoutineRepo interface {
	Create(ctx context.Context, tx *gorm.DB, routine *types.Routine) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Routine, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.Routine, error)
	ListAssignedToClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.Routine, error)
}

type routineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoutineRepo(db *gorm.DB, baseLog *logger.Logger) RoutineRepo {
	repoLog := baseLog.With("repo", "RoutineRepo")
	return &routineRepo{db: db, log: repoLog}
}

func (r *routineRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *routineRepo) Create(ctx context.Context, tx *gorm.DB, routine *types.Routine) error {
	return r.conn(tx).WithContext(ctx).Create(routine).Error
}

func (r *routineRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Routine, error) {
	var routine types.Routine
	if err := r.conn(tx).WithContext(ctx).
		Preload("Exercises").
		Where("id = ?", id).
		First(&routine).Error; err != nil {
		return nil, err
	}
	return &routine, nil
}

func (r *routineRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Routine{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *routineRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Routine{}).Error
}

func (r *routineRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.Routine, error) {
	var results []*types.Routine
	if err := r.conn(tx).WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *routineRepo) ListAssignedToClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.Routine, error) {
	var results []*types.Routine
	if err := r.conn(tx).WithContext(ctx).
		Distinct("routine.*").
		Joins("JOIN relationship_routine rr ON rr.routine_id = routine.id").
		Joins("JOIN client_instructor_relationship rel ON rel.id = rr.client_instructor_relationship_id").
		Where("rel.client_id = ? AND routine.is_active = ?", clientID, true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
