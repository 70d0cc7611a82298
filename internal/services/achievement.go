package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type AwardResult struct {
	NewAwards  []*types.ClientAchievement `json:"new_awards"`
	TotalCount int64                      `json:"total_count"`
}

type AchievementService interface {
	CreateDefinition(ctx context.Context, achievement *types.Achievement) error
	UpdateDefinition(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*types.Achievement, error)
	ListDefinitions(ctx context.Context) ([]*types.Achievement, error)
	ListEarned(ctx context.Context, clientID uuid.UUID) ([]*types.ClientAchievement, error)
	AwardForClient(ctx context.Context, clientID uuid.UUID) (*AwardResult, error)
}

type achievementService struct {
	db                    *gorm.DB
	log                   *logger.Logger
	achievementRepo       repos.AchievementRepo
	clientAchievementRepo repos.ClientAchievementRepo
	progressRepo          repos.ProgressRepo
}

func NewAchievementService(
	db *gorm.DB,
	baseLog *logger.Logger,
	achievementRepo repos.AchievementRepo,
	clientAchievementRepo repos.ClientAchievementRepo,
	progressRepo repos.ProgressRepo,
) AchievementService {
	serviceLog := baseLog.With("service", "AchievementService")
	return &achievementService{
		db:                    db,
		log:                   serviceLog,
		achievementRepo:       achievementRepo,
		clientAchievementRepo: clientAchievementRepo,
		progressRepo:          progressRepo,
	}
}

func (as *achievementService) CreateDefinition(ctx context.Context, achievement *types.Achievement) error {
	if achievement.Name == "" {
		return apierr.New(http.StatusBadRequest, "missing_name", fmt.Errorf("achievement name is required"))
	}
	if !types.ValidAchievementType(achievement.AchievementType) {
		return apierr.New(http.StatusBadRequest, "invalid_achievement_type", fmt.Errorf("unknown achievement type %q", achievement.AchievementType))
	}
	var criteria types.AchievementCriteria
	if err := json.Unmarshal(achievement.Criteria, &criteria); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_criteria", fmt.Errorf("criteria is not decodable: %w", err))
	}
	achievement.ID = uuid.New()
	if err := as.achievementRepo.Create(ctx, nil, achievement); err != nil {
		return fmt.Errorf("failed to create achievement: %w", err)
	}
	return nil
}

func (as *achievementService) UpdateDefinition(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*types.Achievement, error) {
	if _, err := as.achievementRepo.GetByID(ctx, nil, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierr.New(http.StatusNotFound, "achievement_not_found", fmt.Errorf("achievement %s not found", id))
		}
		return nil, err
	}
	if raw, ok := updates["achievement_type"]; ok {
		if t, ok := raw.(string); !ok || !types.ValidAchievementType(types.AchievementType(t)) {
			return nil, apierr.New(http.StatusBadRequest, "invalid_achievement_type", fmt.Errorf("unknown achievement type %v", raw))
		}
	}
	if err := as.achievementRepo.Update(ctx, nil, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update achievement: %w", err)
	}
	return as.achievementRepo.GetByID(ctx, nil, id)
}

func (as *achievementService) ListDefinitions(ctx context.Context) ([]*types.Achievement, error) {
	return as.achievementRepo.ListActive(ctx, nil)
}

func (as *achievementService) ListEarned(ctx context.Context, clientID uuid.UUID) ([]*types.ClientAchievement, error) {
	return as.clientAchievementRepo.ListByClient(ctx, nil, clientID)
}

// AwardForClient runs the full awarding pass: every active, not-yet-earned
// achievement is evaluated against the client's complete progress history.
// Safe to invoke repeatedly; with no new progress the second pass creates
// nothing. The unique (client, achievement) index settles concurrent runs.
func (as *achievementService) AwardForClient(ctx context.Context, clientID uuid.UUID) (*AwardResult, error) {
	definitions, err := as.achievementRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	existing, err := as.clientAchievementRepo.ListByClient(ctx, nil, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned achievements: %w", err)
	}
	earned := make(map[uuid.UUID]bool, len(existing))
	for _, award := range existing {
		earned[award.AchievementID] = true
	}

	records, err := as.progressRepo.ListByClient(ctx, nil, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress records: %w", err)
	}

	now := time.Now()
	newAwards := []*types.ClientAchievement{}
	for _, def := range definitions {
		if earned[def.ID] {
			continue
		}

		satisfied, evidence, evalErr := evaluateCriteria(records, def.AchievementType, def.Criteria, now)
		if evalErr != nil {
			// One bad criteria document must not sink the whole pass.
			as.log.Warn("skipping achievement with undecodable criteria",
				"achievement_id", def.ID,
				"error", evalErr,
			)
			continue
		}
		if !satisfied {
			continue
		}

		progressData, err := json.Marshal(evidence)
		if err != nil {
			as.log.Error("failed to encode award evidence", "achievement_id", def.ID, "error", err)
			continue
		}

		award := &types.ClientAchievement{
			ID:            uuid.New(),
			ClientID:      clientID,
			AchievementID: def.ID,
			EarnedAt:      now,
			ProgressData:  datatypes.JSON(progressData),
		}
		created, err := as.clientAchievementRepo.CreateIfAbsent(ctx, nil, award)
		if err != nil {
			return nil, fmt.Errorf("failed to record award for achievement %s: %w", def.ID, err)
		}
		if !created {
			// Lost the race to a concurrent pass; treat as already awarded.
			continue
		}
		as.log.Info("achievement awarded",
			"client_id", clientID,
			"achievement_id", def.ID,
			"achievement_type", def.AchievementType,
		)
		newAwards = append(newAwards, award)
	}

	total, err := as.clientAchievementRepo.CountByClient(ctx, nil, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to count awards: %w", err)
	}

	return &AwardResult{NewAwards: newAwards, TotalCount: total}, nil
}

// evaluateCriteria checks accumulated progress against one criteria document.
// Returns an error only when the document cannot be decoded; an unrecognized
// achievement type is simply never satisfied. All thresholds are inclusive.
func evaluateCriteria(records []*types.ExerciseProgress, achievementType types.AchievementType, raw datatypes.JSON, now time.Time) (bool, map[string]interface{}, error) {
	var criteria types.AchievementCriteria
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &criteria); err != nil {
			return false, nil, fmt.Errorf("decode criteria: %w", err)
		}
	}

	switch achievementType {
	case types.AchievementExerciseCount:
		return evaluateExerciseCount(records, criteria, now)
	case types.AchievementDuration:
		return evaluateDuration(records, criteria, now)
	case types.AchievementConsistency:
		return evaluateConsistency(records, criteria, now)
	case types.AchievementDifficulty:
		return evaluateDifficulty(records, criteria, now)
	case types.AchievementCombinedRoutine:
		return evaluateCombinedRoutine(records, criteria, now)
	}

	return false, map[string]interface{}{
		"reason":       "unknown achievement type",
		"evaluated_at": now,
	}, nil
}

func evaluateExerciseCount(records []*types.ExerciseProgress, criteria types.AchievementCriteria, now time.Time) (bool, map[string]interface{}, error) {
	count := 0
	for _, rec := range records {
		if matchesExerciseType(rec, criteria.ExerciseType) {
			count++
		}
	}
	satisfied := count >= criteria.RequiredCount
	evidence := map[string]interface{}{
		"count":          count,
		"required_count": criteria.RequiredCount,
		"evaluated_at":   now,
	}
	if criteria.ExerciseType != "" {
		evidence["exercise_type"] = criteria.ExerciseType
	}
	return satisfied, evidence, nil
}

func matchesExerciseType(rec *types.ExerciseProgress, exerciseType string) bool {
	switch exerciseType {
	case "":
		return true
	case "exercise":
		return rec.ExerciseID != nil
	case "breathing":
		return rec.BreathingExerciseID != nil
	case "meditation":
		return rec.MeditationSessionID != nil
	}
	return false
}

func evaluateDuration(records []*types.ExerciseProgress, criteria types.AchievementCriteria, now time.Time) (bool, map[string]interface{}, error) {
	var cutoff time.Time
	if criteria.TimePeriod != "" {
		window, ok := timePeriodWindow(criteria.TimePeriod)
		if !ok {
			// A requested but unrecognized window never matches.
			return false, map[string]interface{}{
				"reason":       "unknown time period",
				"time_period":  criteria.TimePeriod,
				"evaluated_at": now,
			}, nil
		}
		cutoff = now.Add(-window)
	}

	total := 0
	for _, rec := range records {
		if !cutoff.IsZero() && !rec.CompletedAt.After(cutoff) {
			continue
		}
		total += rec.DurationSeconds
	}
	satisfied := total >= criteria.RequiredDuration
	evidence := map[string]interface{}{
		"total_duration":    total,
		"required_duration": criteria.RequiredDuration,
		"evaluated_at":      now,
	}
	if criteria.TimePeriod != "" {
		evidence["time_period"] = criteria.TimePeriod
	}
	return satisfied, evidence, nil
}

func timePeriodWindow(period string) (time.Duration, bool) {
	switch period {
	case "day":
		return 24 * time.Hour, true
	case "week":
		return 7 * 24 * time.Hour, true
	case "month":
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

func evaluateConsistency(records []*types.ExerciseProgress, criteria types.AchievementCriteria, now time.Time) (bool, map[string]interface{}, error) {
	seen := map[string]time.Time{}
	for _, rec := range records {
		local := rec.CompletedAt.Local()
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
		seen[day.Format("2006-01-02")] = day
	}
	if len(seen) == 0 {
		return false, map[string]interface{}{
			"distinct_days": 0,
			"required_days": criteria.RequiredDays,
			"evaluated_at":  now,
		}, nil
	}

	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	if criteria.Consecutive {
		streak := longestConsecutiveRun(days)
		return streak >= criteria.RequiredDays, map[string]interface{}{
			"longest_streak": streak,
			"required_days":  criteria.RequiredDays,
			"consecutive":    true,
			"evaluated_at":   now,
		}, nil
	}

	return len(days) >= criteria.RequiredDays, map[string]interface{}{
		"distinct_days": len(days),
		"required_days": criteria.RequiredDays,
		"evaluated_at":  now,
	}, nil
}

// longestConsecutiveRun expects a sorted slice of distinct midnight-aligned
// dates. A gap of exactly one calendar day extends the run.
func longestConsecutiveRun(days []time.Time) int {
	longest := 1
	current := 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}

func evaluateDifficulty(records []*types.ExerciseProgress, criteria types.AchievementCriteria, now time.Time) (bool, map[string]interface{}, error) {
	requiredCount := criteria.RequiredCount
	if requiredCount <= 0 {
		requiredCount = 1
	}
	count := 0
	for _, rec := range records {
		if rec.DifficultyRating != nil && *rec.DifficultyRating >= criteria.RequiredDifficulty {
			count++
		}
	}
	return count >= requiredCount, map[string]interface{}{
		"count":               count,
		"required_count":      requiredCount,
		"required_difficulty": criteria.RequiredDifficulty,
		"evaluated_at":        now,
	}, nil
}

func evaluateCombinedRoutine(records []*types.ExerciseProgress, criteria types.AchievementCriteria, now time.Time) (bool, map[string]interface{}, error) {
	count := 0
	for _, rec := range records {
		if rec.CombinedRoutineID == nil {
			continue
		}
		if criteria.RoutineID != nil && *rec.CombinedRoutineID != *criteria.RoutineID {
			continue
		}
		count++
	}
	evidence := map[string]interface{}{
		"count":          count,
		"required_count": criteria.RequiredCount,
		"evaluated_at":   now,
	}
	if criteria.RoutineID != nil {
		evidence["routine_id"] = criteria.RoutineID.String()
	}
	return count >= criteria.RequiredCount, evidence, nil
}
