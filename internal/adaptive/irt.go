package adaptive

import (
	"math"
	"sort"

	"github.com/brightsum/backend/internal/models"
)

// ItemParams are fitted 2-parameter logistic coefficients for one question:
// p(correct) = sigmoid(w0 + w1*mastery). Most items start life without them.
type ItemParams struct {
	W0 float64 `json:"w0"`
	W1 float64 `json:"w1"`
}

// Candidate pairs a question with its optional IRT parameters.
type Candidate struct {
	Question models.Question
	Params   *ItemParams
}

// ScoredItem is a candidate ranked by Fisher information at the learner's
// current mastery.
type ScoredItem struct {
	Question    models.Question
	Information float64
	PCorrect    float64
}

// Sigmoid is the logistic link, guarded against overflow at the extremes.
func Sigmoid(x float64) float64 {
	if x < -700 {
		return 0.0
	}
	if x > 700 {
		return 1.0
	}
	return 1.0 / (1.0 + math.Exp(-x))
}

// ItemInformation computes the response probability and Fisher information
// of an item with fitted parameters at the given mastery.
func ItemInformation(p ItemParams, mastery float64) (pCorrect, info float64) {
	pCorrect = Sigmoid(p.W0 + p.W1*mastery)
	info = p.W1 * p.W1 * pCorrect * (1.0 - pCorrect)
	return pCorrect, info
}

// coldStartInformation assigns an information proxy to an item without
// fitted parameters so it stays selectable instead of being starved. The
// proxy scales with the base-difficulty band around a neutral p of 0.5.
func coldStartInformation(d models.Difficulty) (pCorrect, info float64) {
	scale := 0.5
	switch d {
	case models.DifficultyEasy:
		scale = 0.2
	case models.DifficultyMedium:
		scale = 0.5
	case models.DifficultyHard:
		scale = 0.7
	}
	pCorrect = 0.5
	info = scale * pCorrect * (1.0 - pCorrect)
	return pCorrect, info
}

// SelectByInformation ranks candidates by Fisher information at the given
// mastery, descending, ties broken by input order, truncated to k. It is
// total over any candidate pool: items without parameters get the cold-start
// proxy. An empty pool yields an empty result; guarding against that is the
// caller's job.
func SelectByInformation(mastery float64, candidates []Candidate, k int) []ScoredItem {
	scored := make([]ScoredItem, 0, len(candidates))
	for _, c := range candidates {
		var p, info float64
		if c.Params != nil {
			p, info = ItemInformation(*c.Params, mastery)
		} else {
			p, info = coldStartInformation(c.Question.BaseDifficulty)
		}
		scored = append(scored, ScoredItem{Question: c.Question, Information: info, PCorrect: p})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Information > scored[j].Information
	})

	if k >= 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
