package adaptive

import "github.com/brightsum/backend/internal/models"

// Cold-start feature defaults, used when a learner has no history on a topic.
const (
	defaultCorrectRate = 0.3
	defaultAvgTime     = 30.0
	defaultHintsUsed   = 0.5
)

// Features is the per-(user,topic) behavioral vector fed to the learned
// estimators and their fallbacks.
type Features struct {
	CorrectRateTopic float64
	AvgTimeTopic     float64
	HintsUsedTopic   float64
	Mastery          float64
	BaseDifficulty   models.Difficulty
}

// AggregateFeatures derives topic-level features from the learner's full
// interaction history on the topic. The correctness rate is taken over
// graded interactions, average time over interactions with a recorded time,
// and hint usage over all exposures. history may be empty.
func AggregateFeatures(history []models.PracticeInteraction, mastery float64, base models.Difficulty) Features {
	f := Features{
		CorrectRateTopic: defaultCorrectRate,
		AvgTimeTopic:     defaultAvgTime,
		HintsUsedTopic:   defaultHintsUsed,
		Mastery:          mastery,
		BaseDifficulty:   base,
	}

	var graded, correct, timed int
	var totalTime float64
	var totalHints int
	for _, it := range history {
		totalHints += it.HintsRequested
		if it.Graded() {
			graded++
			if it.IsCorrect != nil && *it.IsCorrect {
				correct++
			}
		}
		if it.TimeSeconds != nil {
			timed++
			totalTime += *it.TimeSeconds
		}
	}

	if graded > 0 {
		f.CorrectRateTopic = float64(correct) / float64(graded)
	}
	if timed > 0 {
		f.AvgTimeTopic = totalTime / float64(timed)
	}
	if len(history) > 0 {
		f.HintsUsedTopic = float64(totalHints) / float64(len(history))
	}
	return f
}
