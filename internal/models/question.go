package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

type Topic struct {
	ID               int64   `json:"id"`
	Slug             string  `json:"slug"`
	Name             string  `json:"name"`
	Description      *string `json:"description,omitempty"`
	EstimatedTimeMin *int    `json:"estimated_time_min,omitempty"`
}

// Question is a short-answer item belonging to one topic. The canonical
// answer is compared case-insensitively against submissions.
type Question struct {
	ID             int64      `json:"id"`
	TopicID        int64      `json:"topic_id"`
	Stem           string     `json:"stem"`
	Answer         string     `json:"-"`
	BaseDifficulty Difficulty `json:"base_difficulty"`
	IsQuizOnly     bool       `json:"is_quiz_only"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Hint is one step of a question's ordered hint sequence. Ordering is
// 1-based and gap-free; hints are addressed by index, not by id.
type Hint struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Ordering   int    `json:"ordering"`
	Text       string `json:"text"`
}

type MasteryState struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	TopicID     int64     `json:"topic_id"`
	Mastery     float64   `json:"mastery"`
	LastUpdated time.Time `json:"last_updated"`
}
