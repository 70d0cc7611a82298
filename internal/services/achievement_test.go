package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func progressAt(clientID uuid.UUID, completedAt time.Time, duration int) *types.ExerciseProgress {
	return &types.ExerciseProgress{
		ID:              uuid.New(),
		ClientID:        clientID,
		CompletedAt:     completedAt,
		DurationSeconds: duration,
	}
}

func TestEvaluateExerciseCount(t *testing.T) {
	now := time.Now()
	clientID := uuid.New()
	exerciseID := uuid.New()
	breathingID := uuid.New()

	withExercise := progressAt(clientID, now.Add(-time.Hour), 60)
	withExercise.ExerciseID = &exerciseID
	withBreathing := progressAt(clientID, now.Add(-2*time.Hour), 60)
	withBreathing.BreathingExerciseID = &breathingID
	plain := progressAt(clientID, now.Add(-3*time.Hour), 60)

	records := []*types.ExerciseProgress{withExercise, withBreathing, plain}

	cases := []struct {
		name     string
		criteria string
		want     bool
	}{
		{name: "all_types_at_threshold", criteria: `{"required_count": 3}`, want: true},
		{name: "all_types_one_short", criteria: `{"required_count": 4}`, want: false},
		{name: "filter_breathing", criteria: `{"required_count": 1, "exercise_type": "breathing"}`, want: true},
		{name: "filter_breathing_too_many", criteria: `{"required_count": 2, "exercise_type": "breathing"}`, want: false},
		{name: "filter_meditation_none", criteria: `{"required_count": 1, "exercise_type": "meditation"}`, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := evaluateCriteria(records, types.AchievementExerciseCount, datatypes.JSON(tc.criteria), now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("satisfied = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateDuration(t *testing.T) {
	now := time.Now()
	clientID := uuid.New()
	records := []*types.ExerciseProgress{
		progressAt(clientID, now.Add(-time.Hour), 600),
		progressAt(clientID, now.Add(-3*24*time.Hour), 900),
		progressAt(clientID, now.Add(-8*24*time.Hour), 10000),
	}

	cases := []struct {
		name     string
		criteria string
		want     bool
	}{
		{name: "all_time_total", criteria: `{"required_duration": 11500}`, want: true},
		{name: "week_excludes_old_record", criteria: `{"required_duration": 1501, "time_period": "week"}`, want: false},
		{name: "week_at_threshold", criteria: `{"required_duration": 1500, "time_period": "week"}`, want: true},
		{name: "day_only_recent", criteria: `{"required_duration": 600, "time_period": "day"}`, want: true},
		{name: "day_one_over", criteria: `{"required_duration": 601, "time_period": "day"}`, want: false},
		{name: "month_includes_all", criteria: `{"required_duration": 11500, "time_period": "month"}`, want: true},
		{name: "unknown_period_never_matches", criteria: `{"required_duration": 1, "time_period": "fortnight"}`, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := evaluateCriteria(records, types.AchievementDuration, datatypes.JSON(tc.criteria), now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("satisfied = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateConsistency(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.Local)
	clientID := uuid.New()

	day := func(offset int) time.Time {
		return time.Date(2026, 3, 1+offset, 8, 0, 0, 0, time.Local)
	}

	// Practice on days 1, 2, 3, 5: distinct days 4, longest streak 3.
	records := []*types.ExerciseProgress{
		progressAt(clientID, day(0), 60),
		progressAt(clientID, day(1), 60),
		progressAt(clientID, day(1).Add(6*time.Hour), 60), // same day twice
		progressAt(clientID, day(2), 60),
		progressAt(clientID, day(4), 60),
	}

	cases := []struct {
		name     string
		criteria string
		want     bool
	}{
		{name: "distinct_days_at_threshold", criteria: `{"required_days": 4}`, want: true},
		{name: "distinct_days_one_short", criteria: `{"required_days": 5}`, want: false},
		{name: "streak_of_three", criteria: `{"required_days": 3, "consecutive": true}`, want: true},
		{name: "streak_of_four_missing", criteria: `{"required_days": 4, "consecutive": true}`, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := evaluateCriteria(records, types.AchievementConsistency, datatypes.JSON(tc.criteria), now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("satisfied = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("no_records", func(t *testing.T) {
		got, _, err := evaluateCriteria(nil, types.AchievementConsistency, datatypes.JSON(`{"required_days": 1}`), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got {
			t.Fatalf("no records should never satisfy consistency")
		}
	})
}

func TestEvaluateDifficulty(t *testing.T) {
	now := time.Now()
	clientID := uuid.New()
	rated := func(rating int) *types.ExerciseProgress {
		rec := progressAt(clientID, now.Add(-time.Hour), 60)
		rec.DifficultyRating = &rating
		return rec
	}
	records := []*types.ExerciseProgress{
		rated(5),
		rated(4),
		rated(2),
		progressAt(clientID, now.Add(-time.Hour), 60), // unrated
	}

	cases := []struct {
		name     string
		criteria string
		want     bool
	}{
		{name: "default_count_one", criteria: `{"required_difficulty": 5}`, want: true},
		{name: "count_above_available", criteria: `{"required_difficulty": 5, "required_count": 2}`, want: false},
		{name: "two_at_four_or_higher", criteria: `{"required_difficulty": 4, "required_count": 2}`, want: true},
		{name: "unrated_never_counts", criteria: `{"required_difficulty": 1, "required_count": 4}`, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := evaluateCriteria(records, types.AchievementDifficulty, datatypes.JSON(tc.criteria), now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("satisfied = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateCombinedRoutine(t *testing.T) {
	now := time.Now()
	clientID := uuid.New()
	combinedA := uuid.New()
	combinedB := uuid.New()

	forRoutine := func(id uuid.UUID) *types.ExerciseProgress {
		rec := progressAt(clientID, now.Add(-time.Hour), 60)
		rec.CombinedRoutineID = &id
		return rec
	}
	records := []*types.ExerciseProgress{
		forRoutine(combinedA),
		forRoutine(combinedA),
		forRoutine(combinedB),
		progressAt(clientID, now.Add(-time.Hour), 60),
	}

	t.Run("any_combined_routine", func(t *testing.T) {
		got, _, err := evaluateCriteria(records, types.AchievementCombinedRoutine, datatypes.JSON(`{"required_count": 3}`), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Fatalf("three combined completions should satisfy required_count 3")
		}
	})

	t.Run("specific_routine", func(t *testing.T) {
		criteria := `{"required_count": 2, "routine_id": "` + combinedA.String() + `"}`
		got, _, err := evaluateCriteria(records, types.AchievementCombinedRoutine, datatypes.JSON(criteria), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Fatalf("two completions of the named routine should satisfy required_count 2")
		}
	})

	t.Run("specific_routine_one_short", func(t *testing.T) {
		criteria := `{"required_count": 2, "routine_id": "` + combinedB.String() + `"}`
		got, _, err := evaluateCriteria(records, types.AchievementCombinedRoutine, datatypes.JSON(criteria), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got {
			t.Fatalf("one completion should not satisfy required_count 2")
		}
	})
}

func TestEvaluateCriteriaEdgeCases(t *testing.T) {
	now := time.Now()

	t.Run("unknown_type_never_satisfies", func(t *testing.T) {
		got, evidence, err := evaluateCriteria(nil, types.AchievementType("marathon"), datatypes.JSON(`{}`), now)
		if err != nil {
			t.Fatalf("unknown type should not be an error: %v", err)
		}
		if got {
			t.Fatalf("unknown type must not satisfy")
		}
		if evidence == nil {
			t.Fatalf("expected evidence explaining the miss")
		}
	})

	t.Run("malformed_criteria_is_an_error", func(t *testing.T) {
		_, _, err := evaluateCriteria(nil, types.AchievementExerciseCount, datatypes.JSON(`{not json`), now)
		if err == nil {
			t.Fatalf("expected decode error for malformed criteria")
		}
	})

	t.Run("empty_criteria_uses_zero_values", func(t *testing.T) {
		got, _, err := evaluateCriteria(nil, types.AchievementExerciseCount, nil, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Fatalf("zero required_count over zero records is satisfied by inclusive compare")
		}
	})
}

// ---- awarding pass ----

type fakeAchievementRepo struct {
	definitions []*types.Achievement
}

func (f *fakeAchievementRepo) Create(ctx context.Context, tx *gorm.DB, a *types.Achievement) error {
	f.definitions = append(f.definitions, a)
	return nil
}

func (f *fakeAchievementRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Achievement, error) {
	for _, def := range f.definitions {
		if def.ID == id {
			return def, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAchievementRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeAchievementRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	return f.definitions, nil
}

func (f *fakeAchievementRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	active := []*types.Achievement{}
	for _, def := range f.definitions {
		if def.IsActive {
			active = append(active, def)
		}
	}
	return active, nil
}

type fakeClientAchievementRepo struct {
	awards []*types.ClientAchievement
}

func (f *fakeClientAchievementRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, award *types.ClientAchievement) (bool, error) {
	for _, existing := range f.awards {
		if existing.ClientID == award.ClientID && existing.AchievementID == award.AchievementID {
			return false, nil
		}
	}
	f.awards = append(f.awards, award)
	return true, nil
}

func (f *fakeClientAchievementRepo) ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.ClientAchievement, error) {
	out := []*types.ClientAchievement{}
	for _, award := range f.awards {
		if award.ClientID == clientID {
			out = append(out, award)
		}
	}
	return out, nil
}

func (f *fakeClientAchievementRepo) CountByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (int64, error) {
	list, _ := f.ListByClient(ctx, tx, clientID)
	return int64(len(list)), nil
}

type fakeProgressRepo struct {
	records []*types.ExerciseProgress
}

func (f *fakeProgressRepo) Create(ctx context.Context, tx *gorm.DB, record *types.ExerciseProgress) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeProgressRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExerciseProgress, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProgressRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeProgressRepo) ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.ExerciseProgress, error) {
	out := []*types.ExerciseProgress{}
	for _, rec := range f.records {
		if rec.ClientID == clientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) ListByInstructorClients(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.ExerciseProgress, error) {
	return nil, nil
}

func TestAwardForClientIdempotent(t *testing.T) {
	log := testLogger(t)
	clientID := uuid.New()

	achievementRepo := &fakeAchievementRepo{definitions: []*types.Achievement{
		{
			ID:              uuid.New(),
			Name:            "First Steps",
			AchievementType: types.AchievementExerciseCount,
			Criteria:        datatypes.JSON(`{"required_count": 1}`),
			IsActive:        true,
		},
		{
			ID:              uuid.New(),
			Name:            "Marathon Month",
			AchievementType: types.AchievementDuration,
			Criteria:        datatypes.JSON(`{"required_duration": 999999}`),
			IsActive:        true,
		},
		{
			ID:              uuid.New(),
			Name:            "Broken Criteria",
			AchievementType: types.AchievementExerciseCount,
			Criteria:        datatypes.JSON(`{oops`),
			IsActive:        true,
		},
	}}
	awardRepo := &fakeClientAchievementRepo{}
	progRepo := &fakeProgressRepo{records: []*types.ExerciseProgress{
		progressAt(clientID, time.Now().Add(-time.Hour), 300),
	}}

	svc := NewAchievementService(nil, log, achievementRepo, awardRepo, progRepo)

	first, err := svc.AwardForClient(context.Background(), clientID)
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if len(first.NewAwards) != 1 {
		t.Fatalf("first pass new awards = %d, want 1", len(first.NewAwards))
	}
	if first.TotalCount != 1 {
		t.Fatalf("first pass total = %d, want 1", first.TotalCount)
	}
	if first.NewAwards[0].AchievementID != achievementRepo.definitions[0].ID {
		t.Fatalf("wrong achievement awarded")
	}
	if len(first.NewAwards[0].ProgressData) == 0 {
		t.Fatalf("award should carry evaluation evidence")
	}

	second, err := svc.AwardForClient(context.Background(), clientID)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if len(second.NewAwards) != 0 {
		t.Fatalf("second pass new awards = %d, want 0", len(second.NewAwards))
	}
	if second.TotalCount != 1 {
		t.Fatalf("second pass total = %d, want 1", second.TotalCount)
	}
}
