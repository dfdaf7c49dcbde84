package adaptive

import (
	"errors"
	"testing"
)

type stubHintModel struct {
	level int
	err   error
}

func (s stubHintModel) PredictHintLevel(Features, int) (int, error) {
	return s.level, s.err
}

func TestResolveHintSequentialFallback(t *testing.T) {
	failing := stubHintModel{err: errors.New("model unavailable")}

	// With a failing model the hint index advances one step at a time.
	for used := 0; used < 3; used++ {
		choice, err := ResolveHint(failing, Features{}, used, 3)
		if err != nil {
			t.Fatalf("ResolveHint(used=%d) returned error: %v", used, err)
		}
		if choice.Index != used {
			t.Errorf("ResolveHint(used=%d).Index = %d, want %d", used, choice.Index, used)
		}
		if choice.PredictedLevel != nil {
			t.Errorf("failing model should not report a predicted level")
		}
	}

	if _, err := ResolveHint(failing, Features{}, 3, 3); !errors.Is(err, ErrExhausted) {
		t.Errorf("ResolveHint past last hint = %v, want ErrExhausted", err)
	}
}

func TestResolveHintNeverRegresses(t *testing.T) {
	// Model suggests level 1 but the learner has already seen two hints:
	// clamp up to the next sequential hint instead of re-showing.
	choice, err := ResolveHint(stubHintModel{level: 1}, Features{}, 2, 3)
	if err != nil {
		t.Fatalf("ResolveHint returned error: %v", err)
	}
	if choice.Index != 2 {
		t.Errorf("Index = %d, want 2 (clamped up past seen hints)", choice.Index)
	}
	if choice.PredictedLevel == nil || *choice.PredictedLevel != 1 {
		t.Errorf("PredictedLevel = %v, want 1", choice.PredictedLevel)
	}
}

func TestResolveHintMonotonic(t *testing.T) {
	// Repeated requests against the same interaction never go backwards,
	// whatever the model predicts.
	models := []HintModel{
		stubHintModel{level: 1},
		stubHintModel{level: 3},
		stubHintModel{level: 2},
	}

	used := 0
	last := -1
	for _, m := range models {
		choice, err := ResolveHint(m, Features{}, used, 3)
		if err != nil {
			break
		}
		if choice.Index < last {
			t.Fatalf("hint index regressed: %d after %d", choice.Index, last)
		}
		last = choice.Index
		used = choice.Index + 1
	}
}

func TestResolveHintClampsIntoRange(t *testing.T) {
	// Prediction above the available hint count clamps to the last hint.
	choice, err := ResolveHint(stubHintModel{level: 3}, Features{}, 0, 2)
	if err != nil {
		t.Fatalf("ResolveHint returned error: %v", err)
	}
	if choice.Index != 1 {
		t.Errorf("Index = %d, want 1 (last available hint)", choice.Index)
	}

	// Prediction below level 1 clamps to the first hint.
	choice, err = ResolveHint(stubHintModel{level: 0}, Features{}, 0, 2)
	if err != nil {
		t.Fatalf("ResolveHint returned error: %v", err)
	}
	if choice.Index != 0 {
		t.Errorf("Index = %d, want 0", choice.Index)
	}
}

func TestResolveHintExhaustedAfterAllSeen(t *testing.T) {
	// Even with a confident prediction, a fully consumed hint list signals
	// exhaustion rather than wrapping or repeating.
	if _, err := ResolveHint(stubHintModel{level: 2}, Features{}, 2, 2); !errors.Is(err, ErrExhausted) {
		t.Errorf("ResolveHint with all hints seen = %v, want ErrExhausted", err)
	}
}
