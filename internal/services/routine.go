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

type RoutineService interface {
	Create(ctx context.Context, caller *types.UserProfile, routine *types.Routine) error
	Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.Routine, error)
	Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}) (*types.Routine, error)
	Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error
	List(ctx context.Context, caller *types.UserProfile) ([]*types.Routine, error)
	ListExercises(ctx context.Context, caller *types.UserProfile, routineID uuid.UUID) ([]*types.Exercise, error)
	AddExercise(ctx context.Context, caller *types.UserProfile, routineID uuid.UUID, exercise *types.Exercise, mediaAssetIDs []uuid.UUID) error
	UpdateExercise(ctx context.Context, caller *types.UserProfile, exerciseID uuid.UUID, updates map[string]interface{}, mediaAssetIDs []uuid.UUID) (*types.Exercise, error)
	DeleteExercise(ctx context.Context, caller *types.UserProfile, exerciseID uuid.UUID) error
}

type routineService struct {
	db           *gorm.DB
	log          *logger.Logger
	routineRepo  repos.RoutineRepo
	exerciseRepo repos.ExerciseRepo
	assetRepo    repos.MediaAssetRepo
}

func NewRoutineService(
	db *gorm.DB,
	baseLog *logger.Logger,
	routineRepo repos.RoutineRepo,
	exerciseRepo repos.ExerciseRepo,
	assetRepo repos.MediaAssetRepo,
) RoutineService {
	serviceLog := baseLog.With("service", "RoutineService")
	return &routineService{
		db:           db,
		log:          serviceLog,
		routineRepo:  routineRepo,
		exerciseRepo: exerciseRepo,
		assetRepo:    assetRepo,
	}
}

func (rs *routineService) Create(ctx context.Context, caller *types.UserProfile, routine *types.Routine) error {
	if err := requireInstructor(caller); err != nil {
		return err
	}
	if routine.Name == "" {
		return apierr.New(http.StatusBadRequest, "missing_name", fmt.Errorf("routine name is required"))
	}
	routine.ID = uuid.New()
	routine.InstructorID = caller.ID
	routine.IsActive = true
	if err := rs.routineRepo.Create(ctx, nil, routine); err != nil {
		return fmt.Errorf("failed to create routine: %w", err)
	}
	rs.log.Info("routine created", "instructor_id", caller.ID, "routine_id", routine.ID)
	return nil
}

func (rs *routineService) Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.Routine, error) {
	return rs.visibleRoutine(ctx, caller, id)
}

func (rs *routineService) Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}) (*types.Routine, error) {
	if _, err := rs.ownedRoutine(ctx, caller, id); err != nil {
		return nil, err
	}
	if err := rs.routineRepo.Update(ctx, nil, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update routine: %w", err)
	}
	return rs.routineRepo.GetByID(ctx, nil, id)
}

func (rs *routineService) Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error {
	if _, err := rs.ownedRoutine(ctx, caller, id); err != nil {
		return err
	}
	if err := rs.routineRepo.SoftDelete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	rs.log.Info("routine deleted", "instructor_id", caller.ID, "routine_id", id)
	return nil
}

// List returns the caller's own routines for instructors, and assigned
// routines for clients.
func (rs *routineService) List(ctx context.Context, caller *types.UserProfile) ([]*types.Routine, error) {
	if caller.IsInstructor() {
		return rs.routineRepo.ListByInstructor(ctx, nil, caller.ID)
	}
	return rs.routineRepo.ListAssignedToClient(ctx, nil, caller.ID)
}

func (rs *routineService) ListExercises(ctx context.Context, caller *types.UserProfile, routineID uuid.UUID) ([]*types.Exercise, error) {
	if _, err := rs.visibleRoutine(ctx, caller, routineID); err != nil {
		return nil, err
	}
	return rs.exerciseRepo.ListByRoutine(ctx, nil, routineID)
}

func (rs *routineService) AddExercise(ctx context.Context, caller *types.UserProfile, routineID uuid.UUID, exercise *types.Exercise, mediaAssetIDs []uuid.UUID) error {
	if _, err := rs.ownedRoutine(ctx, caller, routineID); err != nil {
		return err
	}
	if exercise.Name == "" {
		return apierr.New(http.StatusBadRequest, "missing_name", fmt.Errorf("exercise name is required"))
	}

	assets, err := ownedAssetsByIDs(ctx, rs.assetRepo, caller, mediaAssetIDs)
	if err != nil {
		return err
	}

	exercise.ID = uuid.New()
	exercise.RoutineID = routineID
	if err := rs.exerciseRepo.Create(ctx, nil, exercise); err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}
	if len(assets) > 0 {
		if err := rs.exerciseRepo.ReplaceMediaAssets(ctx, nil, exercise, assets); err != nil {
			return fmt.Errorf("failed to attach media assets: %w", err)
		}
	}
	rs.log.Info("exercise created", "instructor_id", caller.ID, "routine_id", routineID, "exercise_id", exercise.ID)
	return nil
}

func (rs *routineService) UpdateExercise(ctx context.Context, caller *types.UserProfile, exerciseID uuid.UUID, updates map[string]interface{}, mediaAssetIDs []uuid.UUID) (*types.Exercise, error) {
	exercise, err := rs.exerciseRepo.GetByID(ctx, nil, exerciseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("exercise_not_found", "exercise %s not found", exerciseID)
		}
		return nil, err
	}
	if _, err := rs.ownedRoutine(ctx, caller, exercise.RoutineID); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := rs.exerciseRepo.Update(ctx, nil, exerciseID, updates); err != nil {
			return nil, fmt.Errorf("failed to update exercise: %w", err)
		}
	}
	if mediaAssetIDs != nil {
		assets, err := ownedAssetsByIDs(ctx, rs.assetRepo, caller, mediaAssetIDs)
		if err != nil {
			return nil, err
		}
		if err := rs.exerciseRepo.ReplaceMediaAssets(ctx, nil, exercise, assets); err != nil {
			return nil, fmt.Errorf("failed to replace media assets: %w", err)
		}
	}
	return rs.exerciseRepo.GetByID(ctx, nil, exerciseID)
}

func (rs *routineService) DeleteExercise(ctx context.Context, caller *types.UserProfile, exerciseID uuid.UUID) error {
	exercise, err := rs.exerciseRepo.GetByID(ctx, nil, exerciseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return notFound("exercise_not_found", "exercise %s not found", exerciseID)
		}
		return err
	}
	if _, err := rs.ownedRoutine(ctx, caller, exercise.RoutineID); err != nil {
		return err
	}
	if err := rs.exerciseRepo.SoftDelete(ctx, nil, exerciseID); err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}
	return nil
}

// ownedRoutine loads a routine and insists the caller is the owning
// instructor.
func (rs *routineService) ownedRoutine(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.Routine, error) {
	if err := requireInstructor(caller); err != nil {
		return nil, err
	}
	routine, err := rs.routineRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("routine_not_found", "routine %s not found", id)
		}
		return nil, err
	}
	if routine.InstructorID != caller.ID && caller.Role != types.RoleAdmin {
		return nil, notFound("routine_not_found", "routine %s not found", id)
	}
	return routine, nil
}

// visibleRoutine additionally admits clients the routine is assigned to.
func (rs *routineService) visibleRoutine(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.Routine, error) {
	if caller.IsInstructor() {
		return rs.ownedRoutine(ctx, caller, id)
	}
	assigned, err := rs.routineRepo.ListAssignedToClient(ctx, nil, caller.ID)
	if err != nil {
		return nil, err
	}
	for _, routine := range assigned {
		if routine.ID == id {
			return routine, nil
		}
	}
	return nil, notFound("routine_not_found", "routine %s not found", id)
}
