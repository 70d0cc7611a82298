package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type UserProfileRepo interface {
	GetOrCreateByExternalID(ctx context.Context, tx *gorm.DB, externalID uuid.UUID, email string) (*types.UserProfile, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UserProfile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UserProfile, error)
	ListClientsOfInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.UserProfile, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	UpdateRole(ctx context.Context, tx *gorm.DB, id uuid.UUID, role string) error
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	repoLog := baseLog.With("repo", "UserProfileRepo")
	return &userProfileRepo{db: db, log: repoLog}
}

func (r *userProfileRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userProfileRepo) GetOrCreateByExternalID(ctx context.Context, tx *gorm.DB, externalID uuid.UUID, email string) (*types.UserProfile, error) {
	transaction := r.conn(tx)

	var profile types.UserProfile
	err := transaction.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	profile = types.UserProfile{
		ID:         uuid.New(),
		ExternalID: externalID,
		Email:      email,
		Role:       types.RoleClient,
	}
	// Two requests can race to materialize the same subject; the unique index
	// on external_id decides, and the loser re-reads.
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(&profile).Error; err != nil {
		return nil, err
	}
	if err := transaction.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userProfileRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UserProfile, error) {
	transaction := r.conn(tx)

	var profile types.UserProfile
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userProfileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UserProfile, error) {
	transaction := r.conn(tx)

	var results []*types.UserProfile
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userProfileRepo) ListClientsOfInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.UserProfile, error) {
	transaction := r.conn(tx)

	var results []*types.UserProfile
	if err := transaction.WithContext(ctx).
		Joins("JOIN client_instructor_relationship r ON r.client_id = user_profile.id").
		Where("r.instructor_id = ?", instructorID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userProfileRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := r.conn(tx)

	return transaction.WithContext(ctx).
		Model(&types.UserProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *userProfileRepo) UpdateRole(ctx context.Context, tx *gorm.DB, id uuid.UUID, role string) error {
	transaction := r.conn(tx)

	return transaction.WithContext(ctx).
		Model(&types.UserProfile{}).
		Where("id = ?", id).
		Update("role", role).Error
}
