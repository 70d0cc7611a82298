package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type CombinedRoutineRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cr *types.CombinedRoutine) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CombinedRoutine, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.CombinedRoutine, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.CombinedRoutine, error)
	ReplaceRoutines(ctx context.Context, tx *gorm.DB, cr *types.CombinedRoutine, routines []*types.Routine) error
	ReplaceBreathingExercises(ctx context.Context, tx *gorm.DB, cr *types.CombinedRoutine, exercises []*types.BreathingExercise) error
	ReplaceMeditationSessions(ctx context.Context, tx *gorm.DB, cr *types.CombinedRoutine, sessions []*types.MeditationSession) error
}

type combinedRoutineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCombinedRoutineRepo(db *gorm.DB, baseLog *logger.Logger) CombinedRoutineRepo {
	repoLog := baseLog.With("repo", "CombinedRoutineRepo")
	return &combinedRoutineRepo{db: db, log: repoLog}
}

func (r *combinedRoutineRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *combinedRoutineRepo) Create(ctx context.Context, tx *gorm.DB, cr *types.CombinedRoutine) error {
	return r.conn(tx).WithContext(ctx).Create(cr).Error
}

func (r *combinedRoutineRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CombinedRoutine, error) {
	var cr types.CombinedRoutine
	if err := r.conn(tx).WithContext(ctx).
		Preload("Routines").
		Preload("BreathingExercises").
		Preload("MeditationSessions").
		Where("id = ?", id).
		First(&cr).Error; err != nil {
		return nil, err
	}
	return &cr, nil
}

func (r *combinedRoutineRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.CombinedRoutine{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *combinedRoutineRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.CombinedRoutine{}).Error
}

func (r *combinedRoutineRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.CombinedRoutine, error) {
	var results []*types.CombinedRoutine
	if err := r.conn(tx).WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *combinedRoutineRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.CombinedRoutine, error) {
	var results []*types.CombinedRoutine
	if err := r.conn(tx).WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *combinedRoutineRepo) ReplaceRoutines(ctx context.Context, tx *gorm.DB, cr *types.CombinedRoutine, routines []*types.Routine) error {
	return r.conn(tx).WithContext(ctx).Model(cr).Association("Routines").Replace(routines)
}

func (r *combinedRoutineRepo) ReplaceBreathingExercises(ctx context.Context, tx *gorm.DB, cr *types.CombinedRoutine, exercises []*types.BreathingExercise) error {
	return r.conn(tx).WithContext(ctx).Model(cr).Association("BreathingExercises").Replace(exercises)
}

func (r *combinedRoutineRepo) ReplaceMeditationSessions(ctx context.Context, tx *gorm.DB, cr *types.CombinedRoutine, sessions []*types.MeditationSession) error {
	return r.conn(tx).WithContext(ctx).Model(cr).Association("MeditationSessions").Replace(sessions)
}
