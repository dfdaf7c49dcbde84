package adaptive

import (
	"errors"
	"testing"

	"github.com/brightsum/backend/internal/models"
)

func TestMapProbToDifficulty(t *testing.T) {
	tests := []struct {
		prob float64
		want models.Difficulty
	}{
		{0.0, models.DifficultyEasy},
		{0.49, models.DifficultyEasy},
		{0.5, models.DifficultyMedium}, // boundary is inclusive
		{0.79, models.DifficultyMedium},
		{0.8, models.DifficultyHard}, // boundary is inclusive
		{1.0, models.DifficultyHard},
	}

	for _, tt := range tests {
		if got := MapProbToDifficulty(tt.prob); got != tt.want {
			t.Errorf("MapProbToDifficulty(%f) = %s, want %s", tt.prob, got, tt.want)
		}
	}
}

func TestFallbackDifficulty(t *testing.T) {
	tests := []struct {
		mastery     float64
		correctRate float64
		want        models.Difficulty
	}{
		{0.8, 0.0, models.DifficultyHard},   // mastery alone escalates
		{0.0, 0.85, models.DifficultyHard},  // correct rate alone escalates
		{0.4, 0.0, models.DifficultyMedium},
		{0.0, 0.5, models.DifficultyMedium},
		{0.39, 0.49, models.DifficultyEasy},
		{0.0, 0.0, models.DifficultyEasy},
	}

	for _, tt := range tests {
		f := Features{Mastery: tt.mastery, CorrectRateTopic: tt.correctRate}
		if got := FallbackDifficulty(f); got != tt.want {
			t.Errorf("FallbackDifficulty(mastery=%f, rate=%f) = %s, want %s",
				tt.mastery, tt.correctRate, got, tt.want)
		}
	}
}

func TestFallbackDifficultyTotal(t *testing.T) {
	// Out-of-range garbage still yields a valid band.
	weird := []Features{
		{Mastery: -5, CorrectRateTopic: -1, AvgTimeTopic: -100},
		{Mastery: 99, CorrectRateTopic: 42},
		{},
	}
	for _, f := range weird {
		got := FallbackDifficulty(f)
		if !models.ValidDifficulties[got] {
			t.Errorf("FallbackDifficulty(%+v) = %q, not a valid band", f, got)
		}
	}
}

type stubCorrectnessModel struct {
	prob float64
	err  error
}

func (s stubCorrectnessModel) PredictCorrectness(Features) (float64, error) {
	return s.prob, s.err
}

func TestChooseDifficultyUsesModel(t *testing.T) {
	f := Features{Mastery: 0.1, CorrectRateTopic: 0.1}

	got := ChooseDifficulty(stubCorrectnessModel{prob: 0.9}, f)
	if got != models.DifficultyHard {
		t.Errorf("ChooseDifficulty with p=0.9 = %s, want hard", got)
	}
}

func TestChooseDifficultyFallsBack(t *testing.T) {
	f := Features{Mastery: 0.9}

	// Model failure must never surface; the rule-based path takes over.
	got := ChooseDifficulty(stubCorrectnessModel{err: errors.New("model unavailable")}, f)
	if got != models.DifficultyHard {
		t.Errorf("ChooseDifficulty with failing model = %s, want hard from fallback", got)
	}

	// No model at all behaves the same way.
	if got := ChooseDifficulty(nil, f); got != models.DifficultyHard {
		t.Errorf("ChooseDifficulty(nil) = %s, want hard from fallback", got)
	}
}
