package adaptive

// Hint levels are 1-based; a question carries at most MaxHintLevel hints.
const (
	MinHintLevel = 1
	MaxHintLevel = 3
)

// HintChoice is the outcome of resolving which hint to deliver next.
type HintChoice struct {
	// Index is the 0-based hint index to show.
	Index int
	// PredictedLevel is the raw model prediction (1-based) when the model
	// produced one, nil otherwise.
	PredictedLevel *int
}

// ResolveHint decides which hint index to deliver for the open interaction.
// hintsUsed is the number of hints already shown on this question and
// hintCount the number available. The model's suggestion is clamped into
// range and never allowed to re-show an earlier hint: if it points below
// what the learner has already seen, the next sequential hint is used
// instead. When the model fails the choice degrades to sequential. Returns
// ErrExhausted once every hint has been shown.
func ResolveHint(model HintModel, f Features, hintsUsed, hintCount int) (HintChoice, error) {
	choice := HintChoice{Index: hintsUsed}

	if model != nil {
		if level, err := model.PredictHintLevel(f, hintsUsed); err == nil {
			predicted := level
			choice.PredictedLevel = &predicted

			idx := level - 1
			if idx < 0 {
				idx = 0
			}
			if idx > hintCount-1 {
				idx = hintCount - 1
			}
			if idx < hintsUsed {
				idx = hintsUsed
			}
			choice.Index = idx
		}
	}

	if choice.Index >= hintCount {
		return HintChoice{}, ErrExhausted
	}
	return choice, nil
}
