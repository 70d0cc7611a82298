package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type AchievementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, achievement *types.Achievement) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Achievement, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	List(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	repoLog := baseLog.With("repo", "AchievementRepo")
	return &achievementRepo{db: db, log: repoLog}
}

func (r *achievementRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *achievementRepo) Create(ctx context.Context, tx *gorm.DB, achievement *types.Achievement) error {
	return r.conn(tx).WithContext(ctx).Create(achievement).Error
}

func (r *achievementRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Achievement, error) {
	var achievement types.Achievement
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&achievement).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Achievement{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *achievementRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	var results []*types.Achievement
	if err := r.conn(tx).WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *achievementRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	var results []*types.Achievement
	if err := r.conn(tx).WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
