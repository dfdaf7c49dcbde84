package adaptive

import (
	"math"
	"testing"

	"github.com/brightsum/backend/internal/models"
)

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Sigmoid(0) = %f, want 0.5", got)
	}
	if got := Sigmoid(1000); got != 1.0 {
		t.Errorf("Sigmoid(1000) = %f, want 1.0", got)
	}
	if got := Sigmoid(-1000); got != 0.0 {
		t.Errorf("Sigmoid(-1000) = %f, want 0.0", got)
	}
}

func TestItemInformation(t *testing.T) {
	// w0=0, w1=2, mastery=0 → p=0.5, info = 4 * 0.25 = 1.0
	p, info := ItemInformation(ItemParams{W0: 0, W1: 2}, 0)
	if math.Abs(p-0.5) > 1e-9 {
		t.Errorf("pCorrect = %f, want 0.5", p)
	}
	if math.Abs(info-1.0) > 1e-9 {
		t.Errorf("info = %f, want 1.0", info)
	}

	// A flat item (w1=0) carries no information.
	_, info = ItemInformation(ItemParams{W0: 1, W1: 0}, 0.5)
	if info != 0 {
		t.Errorf("info with w1=0 = %f, want 0", info)
	}
}

func question(id int64, d models.Difficulty) models.Question {
	return models.Question{ID: id, BaseDifficulty: d}
}

func TestSelectByInformationOrdering(t *testing.T) {
	candidates := []Candidate{
		{Question: question(1, models.DifficultyMedium), Params: &ItemParams{W0: 0, W1: 1}},
		{Question: question(2, models.DifficultyMedium), Params: &ItemParams{W0: 0, W1: 3}},
		{Question: question(3, models.DifficultyMedium), Params: &ItemParams{W0: 0, W1: 2}},
		{Question: question(4, models.DifficultyEasy)}, // cold start
	}

	selected := SelectByInformation(0.0, candidates, 10)

	if len(selected) != len(candidates) {
		t.Fatalf("len = %d, want %d", len(selected), len(candidates))
	}
	for i := 1; i < len(selected); i++ {
		if selected[i].Information > selected[i-1].Information {
			t.Errorf("not sorted descending at %d: %f > %f",
				i, selected[i].Information, selected[i-1].Information)
		}
	}
	if selected[0].Question.ID != 2 {
		t.Errorf("highest-information item = %d, want 2", selected[0].Question.ID)
	}

	// Output is a subset of the pool with no duplicates.
	seen := map[int64]bool{}
	pool := map[int64]bool{1: true, 2: true, 3: true, 4: true}
	for _, s := range selected {
		if seen[s.Question.ID] {
			t.Errorf("duplicate item %d in selection", s.Question.ID)
		}
		if !pool[s.Question.ID] {
			t.Errorf("item %d not from candidate pool", s.Question.ID)
		}
		seen[s.Question.ID] = true
	}
}

func TestSelectByInformationTruncates(t *testing.T) {
	candidates := []Candidate{
		{Question: question(1, models.DifficultyEasy)},
		{Question: question(2, models.DifficultyMedium)},
		{Question: question(3, models.DifficultyHard)},
	}

	if got := SelectByInformation(0.5, candidates, 2); len(got) != 2 {
		t.Errorf("len with k=2 = %d, want 2", len(got))
	}
	if got := SelectByInformation(0.5, candidates, 10); len(got) != 3 {
		t.Errorf("len with k=10 = %d, want min(k, pool) = 3", len(got))
	}
	if got := SelectByInformation(0.5, nil, 5); len(got) != 0 {
		t.Errorf("empty pool should yield empty selection, got %d", len(got))
	}
}

func TestSelectByInformationColdStart(t *testing.T) {
	// Cold-start items keep non-zero information so they remain selectable,
	// and harder bands proxy to more information than easy.
	selected := SelectByInformation(0.5, []Candidate{
		{Question: question(1, models.DifficultyEasy)},
		{Question: question(2, models.DifficultyHard)},
		{Question: question(3, models.DifficultyMedium)},
	}, 3)

	for _, s := range selected {
		if s.Information <= 0 {
			t.Errorf("cold-start item %d has information %f, want > 0", s.Question.ID, s.Information)
		}
		if s.PCorrect != 0.5 {
			t.Errorf("cold-start item %d pCorrect = %f, want 0.5", s.Question.ID, s.PCorrect)
		}
	}
	if selected[0].Question.ID != 2 || selected[2].Question.ID != 1 {
		t.Errorf("cold-start band ordering wrong: got %d,%d,%d want 2,3,1",
			selected[0].Question.ID, selected[1].Question.ID, selected[2].Question.ID)
	}
}

func TestSelectByInformationStableTies(t *testing.T) {
	// Identical information scores keep input order.
	candidates := []Candidate{
		{Question: question(7, models.DifficultyMedium)},
		{Question: question(8, models.DifficultyMedium)},
		{Question: question(9, models.DifficultyMedium)},
	}

	selected := SelectByInformation(0.5, candidates, 3)
	for i, want := range []int64{7, 8, 9} {
		if selected[i].Question.ID != want {
			t.Errorf("tie order broken at %d: got %d, want %d", i, selected[i].Question.ID, want)
		}
	}
}
