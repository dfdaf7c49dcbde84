package adaptive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CorrectnessModel estimates the probability that the learner's next answer
// is correct. Implementations may fail (missing or corrupt model file);
// callers fall back to rule-based behavior on any error.
type CorrectnessModel interface {
	PredictCorrectness(f Features) (float64, error)
}

// HintModel predicts the ideal hint level (1..3) for the current question.
type HintModel interface {
	PredictHintLevel(f Features, hintsUsedQuestion int) (int, error)
}

const (
	correctnessModelFile = "correctness_model.json"
	hintModelFile        = "hint_model.json"
)

// Provider owns the process-wide learned-model handles. Models are loaded
// lazily from JSON coefficient files and memoized on first success. A failed
// load is retried on the next call rather than cached, so deploying a model
// file is picked up without a restart. Reload drops the cached handles.
type Provider struct {
	dir string

	mu          sync.Mutex
	correctness *logisticModel
	hint        *hintClassifier
}

func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// Reload clears the memoized models; the next prediction reloads from disk.
func (p *Provider) Reload() {
	p.mu.Lock()
	p.correctness = nil
	p.hint = nil
	p.mu.Unlock()
}

func (p *Provider) PredictCorrectness(f Features) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.correctness == nil {
		m, err := loadLogisticModel(filepath.Join(p.dir, correctnessModelFile))
		if err != nil {
			return 0, err
		}
		p.correctness = m
	}
	return p.correctness.proba(f, 0), nil
}

func (p *Provider) PredictHintLevel(f Features, hintsUsedQuestion int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hint == nil {
		m, err := loadHintClassifier(filepath.Join(p.dir, hintModelFile))
		if err != nil {
			return 0, err
		}
		p.hint = m
	}
	return p.hint.predict(f, hintsUsedQuestion), nil
}

// ── Coefficient file formats ───────────────────────────────

// logisticModel scores sigmoid(bias + w·x + difficultyWeights[band]). The
// hints_used_question weight only applies for the hint classifier.
type logisticModel struct {
	Bias              float64            `json:"bias"`
	Weights           map[string]float64 `json:"weights"`
	DifficultyWeights map[string]float64 `json:"difficulty_weights"`
}

func (m *logisticModel) score(f Features, hintsUsedQuestion int) float64 {
	x := m.Bias
	x += m.Weights["correct_rate_topic"] * f.CorrectRateTopic
	x += m.Weights["avg_time_topic"] * f.AvgTimeTopic
	x += m.Weights["mastery"] * f.Mastery
	x += m.Weights["hints_used_topic"] * f.HintsUsedTopic
	x += m.Weights["hints_used_question"] * float64(hintsUsedQuestion)
	x += m.DifficultyWeights[string(f.BaseDifficulty)]
	return x
}

func (m *logisticModel) proba(f Features, hintsUsedQuestion int) float64 {
	return Sigmoid(m.score(f, hintsUsedQuestion))
}

// hintClassifier is a one-vs-rest set of linear scorers, one per hint level.
type hintClassifier struct {
	Classes []int           `json:"classes"`
	Models  []logisticModel `json:"models"`
}

func (c *hintClassifier) predict(f Features, hintsUsedQuestion int) int {
	best := c.Classes[0]
	bestScore := c.Models[0].score(f, hintsUsedQuestion)
	for i := 1; i < len(c.Models); i++ {
		if s := c.Models[i].score(f, hintsUsedQuestion); s > bestScore {
			bestScore = s
			best = c.Classes[i]
		}
	}
	return best
}

func loadLogisticModel(path string) (*logisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load correctness model: %w", err)
	}
	var m logisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse correctness model: %w", err)
	}
	if m.Weights == nil {
		return nil, fmt.Errorf("correctness model %s has no weights", path)
	}
	return &m, nil
}

func loadHintClassifier(path string) (*hintClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load hint model: %w", err)
	}
	var c hintClassifier
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse hint model: %w", err)
	}
	if len(c.Classes) == 0 || len(c.Classes) != len(c.Models) {
		return nil, fmt.Errorf("hint model %s: classes and models mismatch", path)
	}
	for _, cls := range c.Classes {
		if cls < MinHintLevel || cls > MaxHintLevel {
			return nil, fmt.Errorf("hint model %s: class %d out of range", path, cls)
		}
	}
	return &c, nil
}

var _ CorrectnessModel = (*Provider)(nil)
var _ HintModel = (*Provider)(nil)
