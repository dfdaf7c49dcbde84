package adaptive

import "github.com/brightsum/backend/internal/models"

// Probability thresholds for mapping predicted correctness to a difficulty
// band. The mapping is a tested contract independent of any model.
const (
	hardProbThreshold   = 0.8
	mediumProbThreshold = 0.5
)

// MapProbToDifficulty maps a probability of a correct answer to the
// difficulty band worth serving next. High confidence earns harder items.
func MapProbToDifficulty(probCorrect float64) models.Difficulty {
	if probCorrect >= hardProbThreshold {
		return models.DifficultyHard
	}
	if probCorrect >= mediumProbThreshold {
		return models.DifficultyMedium
	}
	return models.DifficultyEasy
}

// ChooseDifficulty picks a target difficulty band for the next question.
// It consults the learned correctness model when one is available and falls
// back to FallbackDifficulty on any model failure. It never returns an error.
func ChooseDifficulty(model CorrectnessModel, f Features) models.Difficulty {
	if model != nil {
		if prob, err := model.PredictCorrectness(f); err == nil {
			return MapProbToDifficulty(prob)
		}
	}
	return FallbackDifficulty(f)
}

// FallbackDifficulty is the rule-based difficulty choice used when the
// learned model is absent or failing. Total over any feature vector.
func FallbackDifficulty(f Features) models.Difficulty {
	if f.Mastery >= 0.8 || f.CorrectRateTopic >= 0.85 {
		return models.DifficultyHard
	}
	if f.Mastery >= 0.4 || f.CorrectRateTopic >= 0.5 {
		return models.DifficultyMedium
	}
	return models.DifficultyEasy
}
