package generator

import "strings"

// QualityCheck holds the structural compliance checks for one generated
// question. A question failing any check is rejected before saving.
type QualityCheck struct {
	StemLengthOK    bool
	AnswerShortOK   bool
	HintLadderOK    bool
	HintsDistinct   bool
	AnswerNotInStem bool
}

func (c QualityCheck) Passed() bool {
	return c.StemLengthOK && c.AnswerShortOK && c.HintLadderOK && c.HintsDistinct && c.AnswerNotInStem
}

// CheckQuality evaluates structural compliance for a single question.
func CheckQuality(q GeneratedQuestion) QualityCheck {
	stem := strings.TrimSpace(q.Stem)
	answer := strings.TrimSpace(q.Answer)

	hintsOK := len(q.Hints) >= 1 && len(q.Hints) <= 3
	for _, h := range q.Hints {
		if strings.TrimSpace(h) == "" {
			hintsOK = false
		}
	}

	distinct := true
	seen := make(map[string]bool, len(q.Hints))
	for _, h := range q.Hints {
		key := strings.ToLower(strings.TrimSpace(h))
		if seen[key] {
			distinct = false
		}
		seen[key] = true
	}

	// A stem that contains its own answer as a standalone token (common
	// with lazy generations like "What is 2+3? The answer is 5") gives the
	// item away. Single-digit answers appear in stems legitimately, so only
	// longer answers are checked.
	answerLeaked := false
	if len(answer) >= 2 && strings.Contains(strings.ToLower(stem), strings.ToLower(answer)) {
		answerLeaked = true
	}

	return QualityCheck{
		StemLengthOK:    len(stem) >= 10 && len(stem) <= 500,
		AnswerShortOK:   answer != "" && len(answer) <= 40,
		HintLadderOK:    hintsOK,
		HintsDistinct:   distinct,
		AnswerNotInStem: !answerLeaked,
	}
}

// FilterBatch drops questions failing quality checks, returning survivors
// and the rejected count.
func FilterBatch(batch *GeneratedBatch) (kept []GeneratedQuestion, rejected int) {
	for _, q := range batch.Questions {
		if CheckQuality(q).Passed() {
			kept = append(kept, q)
		} else {
			rejected++
		}
	}
	return kept, rejected
}
