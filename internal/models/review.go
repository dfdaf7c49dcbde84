package models

import "time"

type TopicReview struct {
	Name     string `json:"name"`
	Accuracy *int   `json:"accuracy,omitempty"`
	Mistakes int    `json:"mistakes"`
}

type RecentSession struct {
	Kind         string    `json:"kind"` // "practice" or "quiz"
	TopicName    string    `json:"topic_name"`
	StartedAt    time.Time `json:"started_at"`
	Answered     int       `json:"answered"`
	Correct      int       `json:"correct"`
	ScorePercent *float64  `json:"score_percent,omitempty"`
	Passed       *bool     `json:"passed,omitempty"`
}

type ReviewSummaryResponse struct {
	TotalAnswered     int             `json:"total_answered"`
	TotalCorrect      int             `json:"total_correct"`
	TotalIncorrect    int             `json:"total_incorrect"`
	OverallAccuracy   *float64        `json:"overall_accuracy,omitempty"`
	HintsPerQuestion  float64         `json:"hints_per_question"`
	TypicalDifficulty Difficulty      `json:"typical_difficulty"`
	Topics            []TopicReview   `json:"topics"`
	RecentSessions    []RecentSession `json:"recent_sessions"`
}

type MistakeQuestion struct {
	QuestionID     int64      `json:"question_id"`
	TopicName      string     `json:"topic_name"`
	Stem           string     `json:"stem"`
	YourAnswer     string     `json:"your_answer"`
	CorrectAnswer  string     `json:"correct_answer"`
	BaseDifficulty Difficulty `json:"base_difficulty"`
	HintsRequested int        `json:"hints_requested"`
}

type MistakeListResponse struct {
	Mistakes []MistakeQuestion `json:"mistakes"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
