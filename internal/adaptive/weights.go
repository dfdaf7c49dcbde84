package adaptive

import "math/rand"

// SelectionWeight returns the sampling weight for a practice candidate given
// the learner's record on it. Never-answered items get a 3x boost; seen items
// scale from 0.1 (always correct) up to 1.0 (always wrong) so weak spots get
// resurfaced.
func SelectionWeight(correct, total int) float64 {
	if total == 0 {
		return 3.0
	}
	rate := float64(correct) / float64(total)
	return 0.1 + 0.9*(1.0-rate)
}

// WeightedPick samples an index proportionally to weights. If all weights
// are zero it falls back to index 0. weights must be non-empty.
func WeightedPick(rng *rand.Rand, weights []float64) int {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return 0
	}

	r := rng.Float64() * sum
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}
