package adaptive

// Mastery update steps. Growth outpaces decay so a single mistake doesn't
// wipe out earned confidence.
const (
	masteryGain = 0.06
	masteryLoss = 0.04

	// DefaultMastery is the prior assumed for a learner with no recorded
	// state on a topic.
	DefaultMastery = 0.3
)

// UpdateMastery returns the new mastery value after one graded outcome.
// Pure function; the caller persists the result. Output stays in [0,1] for
// any prior in [0,1].
func UpdateMastery(prior float64, correct bool) float64 {
	if correct {
		if prior+masteryGain > 1.0 {
			return 1.0
		}
		return prior + masteryGain
	}
	if prior-masteryLoss < 0.0 {
		return 0.0
	}
	return prior - masteryLoss
}

// InitialQuizMastery is the mastery assigned when a learner's first ever
// result on a topic is a whole-quiz pass/fail rather than a practice answer.
func InitialQuizMastery(passed bool) float64 {
	if passed {
		return 0.5
	}
	return 0.2
}
