package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*types.UserProfile, error)
	ListVisible(ctx context.Context, caller *types.UserProfile) ([]*types.UserProfile, error)
	UpdateRole(ctx context.Context, caller *types.UserProfile, id uuid.UUID, role string) (*types.UserProfile, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserProfileRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserProfileRepo) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) Get(ctx context.Context, id uuid.UUID) (*types.UserProfile, error) {
	user, err := us.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("user_not_found", "user %s not found", id)
		}
		return nil, err
	}
	return user, nil
}

// ListVisible returns an instructor's related clients. Clients only ever see
// themselves.
func (us *userService) ListVisible(ctx context.Context, caller *types.UserProfile) ([]*types.UserProfile, error) {
	if caller.IsInstructor() {
		return us.userRepo.ListClientsOfInstructor(ctx, nil, caller.ID)
	}
	return []*types.UserProfile{caller}, nil
}

func (us *userService) UpdateRole(ctx context.Context, caller *types.UserProfile, id uuid.UUID, role string) (*types.UserProfile, error) {
	if err := requireInstructor(caller); err != nil {
		return nil, err
	}
	if role != types.RoleClient && role != types.RoleInstructor {
		return nil, apierr.New(http.StatusBadRequest, "invalid_role", fmt.Errorf("role must be client or instructor"))
	}
	if _, err := us.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateRole(ctx, nil, id, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	us.log.Info("user role updated", "user_id", id, "role", role)
	return us.userRepo.GetByID(ctx, nil, id)
}
