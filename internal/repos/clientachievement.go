package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type ClientAchievementRepo interface {
	// CreateIfAbsent inserts the award unless the (client, achievement) pair
	// already exists. Returns false when the pair was already awarded.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, award *types.ClientAchievement) (bool, error)
	ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.ClientAchievement, error)
	CountByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (int64, error)
}

type clientAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClientAchievementRepo(db *gorm.DB, baseLog *logger.Logger) ClientAchievementRepo {
	repoLog := baseLog.With("repo", "ClientAchievementRepo")
	return &clientAchievementRepo{db: db, log: repoLog}
}

func (r *clientAchievementRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *clientAchievementRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, award *types.ClientAchievement) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(award)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *clientAchievementRepo) ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.ClientAchievement, error) {
	var results []*types.ClientAchievement
	if err := r.conn(tx).WithContext(ctx).
		Preload("Achievement").
		Where("client_id = ?", clientID).
		Order("earned_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *clientAchievementRepo) CountByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.ClientAchievement{}).
		Where("client_id = ?", clientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
