package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
)

// RecordResult couples a logged completion with whatever achievements it
// unlocked.
type RecordResult struct {
	Progress  *types.ExerciseProgress    `json:"progress"`
	NewAwards []*types.ClientAchievement `json:"new_awards"`
}

type ProgressService interface {
	Record(ctx context.Context, caller *types.UserProfile, record *types.ExerciseProgress) (*RecordResult, error)
	Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}) (*types.ExerciseProgress, error)
	List(ctx context.Context, caller *types.UserProfile) ([]*types.ExerciseProgress, error)
}

type progressService struct {
	db                 *gorm.DB
	log                *logger.Logger
	progressRepo       repos.ProgressRepo
	achievementService AchievementService
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	progressRepo repos.ProgressRepo,
	achievementService AchievementService,
) ProgressService {
	serviceLog := baseLog.With("service", "ProgressService")
	return &progressService{
		db:                 db,
		log:                serviceLog,
		progressRepo:       progressRepo,
		achievementService: achievementService,
	}
}

// Record logs one completion for the calling client and immediately runs the
// awarding pass so newly unlocked achievements ride back on the response.
func (ps *progressService) Record(ctx context.Context, caller *types.UserProfile, record *types.ExerciseProgress) (*RecordResult, error) {
	if err := validateProgress(record); err != nil {
		return nil, err
	}

	record.ID = uuid.New()
	record.ClientID = caller.ID
	if record.CompletedAt.IsZero() {
		record.CompletedAt = time.Now()
	}
	if err := ps.progressRepo.Create(ctx, nil, record); err != nil {
		if isUniqueViolation(err) {
			return nil, apierr.New(http.StatusConflict, "duplicate_progress",
				fmt.Errorf("this completion has already been logged"))
		}
		return nil, fmt.Errorf("failed to create progress record: %w", err)
	}
	ps.log.Info("progress recorded",
		"client_id", caller.ID,
		"progress_id", record.ID,
		"duration_seconds", record.DurationSeconds,
	)

	awards, err := ps.achievementService.AwardForClient(ctx, caller.ID)
	if err != nil {
		// The completion is already durable; a failed award pass re-runs on
		// the next one.
		ps.log.Error("award pass failed after progress record", "error", err, "client_id", caller.ID)
		return &RecordResult{Progress: record, NewAwards: []*types.ClientAchievement{}}, nil
	}
	return &RecordResult{Progress: record, NewAwards: awards.NewAwards}, nil
}

func (ps *progressService) Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}) (*types.ExerciseProgress, error) {
	record, err := ps.progressRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("progress_not_found", "progress record %s not found", id)
		}
		return nil, err
	}
	if record.ClientID != caller.ID {
		return nil, notFound("progress_not_found", "progress record %s not found", id)
	}

	// Corrective edits only; the referenced content is immutable.
	allowed := map[string]bool{"duration_seconds": true, "difficulty_rating": true, "notes": true, "feedback": true}
	for field := range updates {
		if !allowed[field] {
			return nil, apierr.New(http.StatusBadRequest, "immutable_field", fmt.Errorf("field %q cannot be updated", field))
		}
	}
	if err := ps.progressRepo.Update(ctx, nil, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update progress record: %w", err)
	}
	return ps.progressRepo.GetByID(ctx, nil, id)
}

// List returns the caller's own history for clients, and the combined history
// of every related client for instructors.
func (ps *progressService) List(ctx context.Context, caller *types.UserProfile) ([]*types.ExerciseProgress, error) {
	if caller.IsInstructor() {
		return ps.progressRepo.ListByInstructorClients(ctx, nil, caller.ID)
	}
	return ps.progressRepo.ListByClient(ctx, nil, caller.ID)
}

func validateProgress(record *types.ExerciseProgress) error {
	refs := 0
	if record.ExerciseID != nil {
		refs++
	}
	if record.BreathingExerciseID != nil {
		refs++
	}
	if record.MeditationSessionID != nil {
		refs++
	}
	if record.CombinedRoutineID != nil {
		refs++
	}
	if refs > 1 {
		return apierr.New(http.StatusBadRequest, "ambiguous_reference",
			fmt.Errorf("a progress record references at most one exercise"))
	}
	if record.DurationSeconds < 0 {
		return apierr.New(http.StatusBadRequest, "invalid_duration", fmt.Errorf("duration must be non-negative"))
	}
	if record.DifficultyRating != nil && (*record.DifficultyRating < 1 || *record.DifficultyRating > 5) {
		return apierr.New(http.StatusBadRequest, "invalid_difficulty", fmt.Errorf("difficulty rating must be between 1 and 5"))
	}
	return nil
}
