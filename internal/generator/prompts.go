package generator

import (
	"fmt"
	"strings"

	"github.com/brightsum/backend/internal/models"
)

var difficultyGuidance = map[models.Difficulty]string{
	models.DifficultyEasy:   "Single-step problems with small numbers. A learner meeting the topic for the first time should be able to solve them.",
	models.DifficultyMedium: "Two-step problems or larger numbers. The learner should need to combine the core technique with basic arithmetic.",
	models.DifficultyHard:   "Multi-step problems, word problems, or problems mixing the topic with earlier material. These should challenge a learner who already answers medium items reliably.",
}

func ItemSystemPrompt() string {
	return `You are an expert maths curriculum author writing short-answer practice questions for school students.

Every question must have exactly one canonical answer expressible as a short string: a number, a fraction like 3/4, or a brief expression. Never write multiple-choice questions. Never write questions whose answer depends on units the stem does not fix.

Each question carries exactly three hints forming a ladder: hint 1 points at the technique, hint 2 sets up the specific computation, hint 3 all but states the answer. A learner reading only hint 1 should still have real work left to do.

Respond with JSON only, no commentary, in this shape:
{"questions":[{"stem":"...","answer":"...","hints":["...","...","..."]}]}`
}

func BuildItemUserPrompt(topicName string, difficulty models.Difficulty, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d %s questions on the topic %q.\n\n", count, difficulty, topicName)
	b.WriteString(difficultyGuidance[difficulty])
	b.WriteString("\n\nKeep stems under 60 words. Answers must be exact strings a student could type; where the answer is a fraction, use the form a/b in lowest terms.")
	return b.String()
}
