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

// CombinedRoutineParts names the content sequenced into one combined flow.
type CombinedRoutineParts struct {
	RoutineIDs           []uuid.UUID
	BreathingExerciseIDs []uuid.UUID
	MeditationSessionIDs []uuid.UUID
}

type CombinedRoutineService interface {
	Create(ctx context.Context, caller *types.UserProfile, cr *types.CombinedRoutine, parts CombinedRoutineParts) error
	Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.CombinedRoutine, error)
	Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}, parts *CombinedRoutineParts) (*types.CombinedRoutine, error)
	Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error
	List(ctx context.Context, caller *types.UserProfile) ([]*types.CombinedRoutine, error)
}

type combinedRoutineService struct {
	db             *gorm.DB
	log            *logger.Logger
	combinedRepo   repos.CombinedRoutineRepo
	routineRepo    repos.RoutineRepo
	breathingRepo  repos.BreathingExerciseRepo
	meditationRepo repos.MeditationSessionRepo
}

func NewCombinedRoutineService(
	db *gorm.DB,
	baseLog *logger.Logger,
	combinedRepo repos.CombinedRoutineRepo,
	routineRepo repos.RoutineRepo,
	breathingRepo repos.BreathingExerciseRepo,
	meditationRepo repos.MeditationSessionRepo,
) CombinedRoutineService {
	serviceLog := baseLog.With("service", "CombinedRoutineService")
	return &combinedRoutineService{
		db:             db,
		log:            serviceLog,
		combinedRepo:   combinedRepo,
		routineRepo:    routineRepo,
		breathingRepo:  breathingRepo,
		meditationRepo: meditationRepo,
	}
}

func (cs *combinedRoutineService) Create(ctx context.Context, caller *types.UserProfile, cr *types.CombinedRoutine, parts CombinedRoutineParts) error {
	if err := requireInstructor(caller); err != nil {
		return err
	}
	if cr.Name == "" {
		return apierr.New(http.StatusBadRequest, "missing_name", fmt.Errorf("combined routine name is required"))
	}

	routines, breathing, meditation, err := cs.resolveParts(ctx, caller, parts)
	if err != nil {
		return err
	}

	cr.ID = uuid.New()
	cr.InstructorID = caller.ID
	cr.IsActive = true
	if err := cs.combinedRepo.Create(ctx, nil, cr); err != nil {
		return fmt.Errorf("failed to create combined routine: %w", err)
	}
	if err := cs.replaceParts(ctx, cr, routines, breathing, meditation); err != nil {
		return err
	}
	cs.log.Info("combined routine created", "instructor_id", caller.ID, "combined_routine_id", cr.ID)
	return nil
}

func (cs *combinedRoutineService) Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.CombinedRoutine, error) {
	cr, err := cs.combinedRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("combined_routine_not_found", "combined routine %s not found", id)
		}
		return nil, err
	}
	if !visibleContent(caller, cr.InstructorID, cr.IsActive) {
		return nil, notFound("combined_routine_not_found", "combined routine %s not found", id)
	}
	return cr, nil
}

func (cs *combinedRoutineService) Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}, parts *CombinedRoutineParts) (*types.CombinedRoutine, error) {
	cr, err := cs.ownedCombined(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := cs.combinedRepo.Update(ctx, nil, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update combined routine: %w", err)
		}
	}
	if parts != nil {
		routines, breathing, meditation, err := cs.resolveParts(ctx, caller, *parts)
		if err != nil {
			return nil, err
		}
		if err := cs.replaceParts(ctx, cr, routines, breathing, meditation); err != nil {
			return nil, err
		}
	}
	return cs.combinedRepo.GetByID(ctx, nil, id)
}

func (cs *combinedRoutineService) Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error {
	if _, err := cs.ownedCombined(ctx, caller, id); err != nil {
		return err
	}
	if err := cs.combinedRepo.SoftDelete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete combined routine: %w", err)
	}
	return nil
}

func (cs *combinedRoutineService) List(ctx context.Context, caller *types.UserProfile) ([]*types.CombinedRoutine, error) {
	if caller.IsInstructor() {
		return cs.combinedRepo.ListByInstructor(ctx, nil, caller.ID)
	}
	return cs.combinedRepo.ListActive(ctx, nil)
}

// resolveParts loads every referenced piece of content and insists the caller
// owns all of it. A combined routine never mixes instructors.
func (cs *combinedRoutineService) resolveParts(ctx context.Context, caller *types.UserProfile, parts CombinedRoutineParts) ([]*types.Routine, []*types.BreathingExercise, []*types.MeditationSession, error) {
	routines := make([]*types.Routine, 0, len(parts.RoutineIDs))
	for _, id := range parts.RoutineIDs {
		routine, err := cs.routineRepo.GetByID(ctx, nil, id)
		if err != nil || routine.InstructorID != caller.ID {
			return nil, nil, nil, notFound("routine_not_found", "routine %s not found", id)
		}
		routines = append(routines, routine)
	}
	breathing := make([]*types.BreathingExercise, 0, len(parts.BreathingExerciseIDs))
	for _, id := range parts.BreathingExerciseIDs {
		be, err := cs.breathingRepo.GetByID(ctx, nil, id)
		if err != nil || be.InstructorID != caller.ID {
			return nil, nil, nil, notFound("breathing_exercise_not_found", "breathing exercise %s not found", id)
		}
		breathing = append(breathing, be)
	}
	meditation := make([]*types.MeditationSession, 0, len(parts.MeditationSessionIDs))
	for _, id := range parts.MeditationSessionIDs {
		session, err := cs.meditationRepo.GetByID(ctx, nil, id)
		if err != nil || session.InstructorID != caller.ID {
			return nil, nil, nil, notFound("meditation_session_not_found", "meditation session %s not found", id)
		}
		meditation = append(meditation, session)
	}
	return routines, breathing, meditation, nil
}

func (cs *combinedRoutineService) replaceParts(ctx context.Context, cr *types.CombinedRoutine, routines []*types.Routine, breathing []*types.BreathingExercise, meditation []*types.MeditationSession) error {
	if err := cs.combinedRepo.ReplaceRoutines(ctx, nil, cr, routines); err != nil {
		return fmt.Errorf("failed to set routines: %w", err)
	}
	if err := cs.combinedRepo.ReplaceBreathingExercises(ctx, nil, cr, breathing); err != nil {
		return fmt.Errorf("failed to set breathing exercises: %w", err)
	}
	if err := cs.combinedRepo.ReplaceMeditationSessions(ctx, nil, cr, meditation); err != nil {
		return fmt.Errorf("failed to set meditation sessions: %w", err)
	}
	return nil
}

func (cs *combinedRoutineService) ownedCombined(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.CombinedRoutine, error) {
	if err := requireInstructor(caller); err != nil {
		return nil, err
	}
	cr, err := cs.combinedRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("combined_routine_not_found", "combined routine %s not found", id)
		}
		return nil, err
	}
	if cr.InstructorID != caller.ID && caller.Role != types.RoleAdmin {
		return nil, notFound("combined_routine_not_found", "combined routine %s not found", id)
	}
	return cr, nil
}
