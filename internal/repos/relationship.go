package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type RelationshipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rel *types.ClientInstructorRelationship) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ClientInstructorRelationship, error)
	ListForClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.ClientInstructorRelationship, error)
	ListForInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.ClientInstructorRelationship, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	AddRoutine(ctx context.Context, tx *gorm.DB, rel *types.ClientInstructorRelationship, routine *types.Routine) error
	RemoveRoutine(ctx context.Context, tx *gorm.DB, rel *types.ClientInstructorRelationship, routine *types.Routine) error
}

type relationshipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) RelationshipRepo {
	repoLog := baseLog.With("repo", "RelationshipRepo")
	return &relationshipRepo{db: db, log: repoLog}
}

func (r *relationshipRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *relationshipRepo) Create(ctx context.Context, tx *gorm.DB, rel *types.ClientInstructorRelationship) error {
	return r.conn(tx).WithContext(ctx).Create(rel).Error
}

func (r *relationshipRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ClientInstructorRelationship, error) {
	var rel types.ClientInstructorRelationship
	if err := r.conn(tx).WithContext(ctx).
		Preload("Routines").
		Where("id = ?", id).
		First(&rel).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *relationshipRepo) ListForClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.ClientInstructorRelationship, error) {
	var results []*types.ClientInstructorRelationship
	if err := r.conn(tx).WithContext(ctx).
		Preload("Routines").
		Where("client_id = ?", clientID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *relationshipRepo) ListForInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.ClientInstructorRelationship, error) {
	var results []*types.ClientInstructorRelationship
	if err := r.conn(tx).WithContext(ctx).
		Preload("Routines").
		Where("instructor_id = ?", instructorID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *relationshipRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ClientInstructorRelationship{}).Error
}

func (r *relationshipRepo) AddRoutine(ctx context.Context, tx *gorm.DB, rel *types.ClientInstructorRelationship, routine *types.Routine) error {
	return r.conn(tx).WithContext(ctx).Model(rel).Association("Routines").Append(routine)
}

func (r *relationshipRepo) RemoveRoutine(ctx context.Context, tx *gorm.DB, rel *types.ClientInstructorRelationship, routine *types.Routine) error {
	return r.conn(tx).WithContext(ctx).Model(rel).Association("Routines").Delete(routine)
}
