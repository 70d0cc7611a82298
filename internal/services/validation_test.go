package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/types"
)

func TestValidateBreathPattern(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "empty_is_fine", raw: ""},
		{name: "box_breathing", raw: "[4, 4, 4, 4]"},
		{name: "fractional_phases", raw: "[4.5, 7, 8]"},
		{name: "empty_array", raw: "[]"},
		{name: "negative_phase", raw: "[4, -1, 4]", wantErr: true},
		{name: "not_an_array", raw: `{"inhale": 4}`, wantErr: true},
		{name: "not_json", raw: "4-7-8", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateBreathPattern([]byte(tc.raw))
			if tc.wantErr {
				wantAPIError(t, err, 400, "invalid_pattern")
				return
			}
			if err != nil {
				t.Fatalf("validateBreathPattern(%q) = %v, want nil", tc.raw, err)
			}
		})
	}
}

func TestValidateProgress(t *testing.T) {
	exerciseID := uuid.New()
	breathingID := uuid.New()
	rating := func(v int) *int { return &v }

	cases := []struct {
		name     string
		record   types.ExerciseProgress
		wantCode string
	}{
		{
			name:   "single_reference",
			record: types.ExerciseProgress{ExerciseID: &exerciseID, DurationSeconds: 300},
		},
		{
			name:   "no_reference_ad_hoc_session",
			record: types.ExerciseProgress{DurationSeconds: 300},
		},
		{
			name:     "two_references",
			record:   types.ExerciseProgress{ExerciseID: &exerciseID, BreathingExerciseID: &breathingID},
			wantCode: "ambiguous_reference",
		},
		{
			name:     "combined_plus_single",
			record:   types.ExerciseProgress{ExerciseID: &exerciseID, CombinedRoutineID: &breathingID},
			wantCode: "ambiguous_reference",
		},
		{
			name:     "negative_duration",
			record:   types.ExerciseProgress{ExerciseID: &exerciseID, DurationSeconds: -1},
			wantCode: "invalid_duration",
		},
		{
			name:     "rating_too_low",
			record:   types.ExerciseProgress{DifficultyRating: rating(0)},
			wantCode: "invalid_difficulty",
		},
		{
			name:     "rating_too_high",
			record:   types.ExerciseProgress{DifficultyRating: rating(6)},
			wantCode: "invalid_difficulty",
		},
		{
			name:   "rating_boundaries",
			record: types.ExerciseProgress{DifficultyRating: rating(5)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateProgress(&tc.record)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("validateProgress() = %v, want nil", err)
				}
				return
			}
			apiErr, ok := err.(*apierr.Error)
			if !ok {
				t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
			}
			if apiErr.Code != tc.wantCode {
				t.Fatalf("error code = %s, want %s", apiErr.Code, tc.wantCode)
			}
		})
	}
}
