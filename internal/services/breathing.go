package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type BreathingService interface {
	Create(ctx context.Context, caller *types.UserProfile, be *types.BreathingExercise, mediaAssetIDs []uuid.UUID) error
	Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.BreathingExercise, error)
	Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}, mediaAssetIDs []uuid.UUID) (*types.BreathingExercise, error)
	Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error
	List(ctx context.Context, caller *types.UserProfile) ([]*types.BreathingExercise, error)
}

type breathingService struct {
	db            *gorm.DB
	log           *logger.Logger
	breathingRepo repos.BreathingExerciseRepo
	assetRepo     repos.MediaAssetRepo
}

func NewBreathingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	breathingRepo repos.BreathingExerciseRepo,
	assetRepo repos.MediaAssetRepo,
) BreathingService {
	serviceLog := baseLog.With("service", "BreathingService")
	return &breathingService{
		db:            db,
		log:           serviceLog,
		breathingRepo: breathingRepo,
		assetRepo:     assetRepo,
	}
}

func (bs *breathingService) Create(ctx context.Context, caller *types.UserProfile, be *types.BreathingExercise, mediaAssetIDs []uuid.UUID) error {
	if err := requireInstructor(caller); err != nil {
		return err
	}
	if be.Name == "" {
		return apierr.New(http.StatusBadRequest, "missing_name", fmt.Errorf("breathing exercise name is required"))
	}
	if err := validateBreathPattern(be.Pattern); err != nil {
		return err
	}

	assets, err := ownedAssetsByIDs(ctx, bs.assetRepo, caller, mediaAssetIDs)
	if err != nil {
		return err
	}

	be.ID = uuid.New()
	be.InstructorID = caller.ID
	be.IsActive = true
	if be.TimerSeconds <= 0 {
		be.TimerSeconds = 60
	}
	if err := bs.breathingRepo.Create(ctx, nil, be); err != nil {
		return fmt.Errorf("failed to create breathing exercise: %w", err)
	}
	if len(assets) > 0 {
		if err := bs.breathingRepo.ReplaceMediaAssets(ctx, nil, be, assets); err != nil {
			return fmt.Errorf("failed to attach media assets: %w", err)
		}
	}
	bs.log.Info("breathing exercise created", "instructor_id", caller.ID, "breathing_exercise_id", be.ID)
	return nil
}

func (bs *breathingService) Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.BreathingExercise, error) {
	be, err := bs.breathingRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("breathing_exercise_not_found", "breathing exercise %s not found", id)
		}
		return nil, err
	}
	if !visibleContent(caller, be.InstructorID, be.IsActive) {
		return nil, notFound("breathing_exercise_not_found", "breathing exercise %s not found", id)
	}
	return be, nil
}

func (bs *breathingService) Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}, mediaAssetIDs []uuid.UUID) (*types.BreathingExercise, error) {
	be, err := bs.ownedBreathing(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if raw, ok := updates["pattern"]; ok {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, apierr.New(http.StatusBadRequest, "invalid_pattern", fmt.Errorf("pattern is not encodable: %w", err))
		}
		if err := validateBreathPattern(encoded); err != nil {
			return nil, err
		}
		updates["pattern"] = encoded
	}
	if len(updates) > 0 {
		if err := bs.breathingRepo.Update(ctx, nil, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update breathing exercise: %w", err)
		}
	}
	if mediaAssetIDs != nil {
		assets, err := ownedAssetsByIDs(ctx, bs.assetRepo, caller, mediaAssetIDs)
		if err != nil {
			return nil, err
		}
		if err := bs.breathingRepo.ReplaceMediaAssets(ctx, nil, be, assets); err != nil {
			return nil, fmt.Errorf("failed to replace media assets: %w", err)
		}
	}
	return bs.breathingRepo.GetByID(ctx, nil, id)
}

func (bs *breathingService) Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error {
	if _, err := bs.ownedBreathing(ctx, caller, id); err != nil {
		return err
	}
	if err := bs.breathingRepo.SoftDelete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete breathing exercise: %w", err)
	}
	return nil
}

// List: instructors see their own catalogue, clients browse everything active.
func (bs *breathingService) List(ctx context.Context, caller *types.UserProfile) ([]*types.BreathingExercise, error) {
	if caller.IsInstructor() {
		return bs.breathingRepo.ListByInstructor(ctx, nil, caller.ID)
	}
	return bs.breathingRepo.ListActive(ctx, nil)
}

func (bs *breathingService) ownedBreathing(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.BreathingExercise, error) {
	if err := requireInstructor(caller); err != nil {
		return nil, err
	}
	be, err := bs.breathingRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("breathing_exercise_not_found", "breathing exercise %s not found", id)
		}
		return nil, err
	}
	if be.InstructorID != caller.ID && caller.Role != types.RoleAdmin {
		return nil, notFound("breathing_exercise_not_found", "breathing exercise %s not found", id)
	}
	return be, nil
}

// validateBreathPattern accepts an empty pattern or a JSON array of positive
// phase durations in seconds.
func validateBreathPattern(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var phases []float64
	if err := json.Unmarshal(raw, &phases); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_pattern", fmt.Errorf("pattern must be an array of phase durations: %w", err))
	}
	for _, phase := range phases {
		if phase < 0 {
			return apierr.New(http.StatusBadRequest, "invalid_pattern", fmt.Errorf("pattern phases must be non-negative"))
		}
	}
	return nil
}
