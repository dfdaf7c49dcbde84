package review

import (
	"math"
	"testing"

	"github.com/brightsum/backend/internal/models"
)

func TestAggregateSummaryEmpty(t *testing.T) {
	resp := aggregateSummary(nil)

	if resp.TotalAnswered != 0 || resp.TotalCorrect != 0 || resp.TotalIncorrect != 0 {
		t.Errorf("empty history should produce zero counts, got %+v", resp)
	}
	if resp.OverallAccuracy != nil {
		t.Error("accuracy should be omitted with no answers")
	}
	if resp.TypicalDifficulty != models.DifficultyEasy {
		t.Errorf("typical difficulty for a new learner = %s, want easy", resp.TypicalDifficulty)
	}
	if resp.Topics == nil {
		t.Error("topics should be an empty slice, not nil")
	}
}

func TestAggregateSummaryCounts(t *testing.T) {
	rows := []GradedRow{
		{TopicName: "Fractions", ShownDifficulty: models.DifficultyEasy, IsCorrect: true, HintsRequested: 1},
		{TopicName: "Fractions", ShownDifficulty: models.DifficultyMedium, IsCorrect: false, HintsRequested: 2},
		{TopicName: "Decimals", ShownDifficulty: models.DifficultyMedium, IsCorrect: true},
		{TopicName: "Decimals", ShownDifficulty: models.DifficultyMedium, IsCorrect: true, HintsRequested: 1},
	}

	resp := aggregateSummary(rows)

	if resp.TotalAnswered != 4 || resp.TotalCorrect != 3 || resp.TotalIncorrect != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/3/1",
			resp.TotalAnswered, resp.TotalCorrect, resp.TotalIncorrect)
	}
	if resp.OverallAccuracy == nil || math.Abs(*resp.OverallAccuracy-75.0) > 1e-9 {
		t.Errorf("accuracy = %v, want 75.0", resp.OverallAccuracy)
	}
	if math.Abs(resp.HintsPerQuestion-1.0) > 1e-9 {
		t.Errorf("hints per question = %v, want 1.0", resp.HintsPerQuestion)
	}
	if resp.TypicalDifficulty != models.DifficultyMedium {
		t.Errorf("typical difficulty = %s, want medium", resp.TypicalDifficulty)
	}

	if len(resp.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(resp.Topics))
	}
	fractions := resp.Topics[0]
	if fractions.Name != "Fractions" || fractions.Mistakes != 1 {
		t.Errorf("fractions review = %+v", fractions)
	}
	if fractions.Accuracy == nil || *fractions.Accuracy != 50 {
		t.Errorf("fractions accuracy = %v, want 50", fractions.Accuracy)
	}
	decimals := resp.Topics[1]
	if decimals.Accuracy == nil || *decimals.Accuracy != 100 || decimals.Mistakes != 0 {
		t.Errorf("decimals review = %+v", decimals)
	}
}
