package models

import "time"

type QuizAttempt struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	TopicID      int64      `json:"topic_id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ScorePercent *float64   `json:"score_percent,omitempty"`
	Passed       *bool      `json:"passed,omitempty"`
}

// QuizRosterItem is one slot of the fixed question set committed to a quiz
// attempt at start time. Grading fields are filled in at submission.
type QuizRosterItem struct {
	ID          int64    `json:"id"`
	AttemptID   int64    `json:"attempt_id"`
	QuestionID  int64    `json:"question_id"`
	Position    int      `json:"position"`
	InfoScore   *float64 `json:"info_score,omitempty"`
	IsCorrect   *bool    `json:"is_correct,omitempty"`
	GivenAnswer *string  `json:"given_answer,omitempty"`
}

type QuizQuestion struct {
	ID             int64      `json:"id"`
	Stem           string     `json:"stem"`
	BaseDifficulty Difficulty `json:"base_difficulty"`
}

type QuizInfoResponse struct {
	TopicID          int64  `json:"topic_id"`
	TopicName        string `json:"topic_name"`
	TopicSlug        string `json:"topic_slug"`
	TimeLimitMinutes int    `json:"time_limit_minutes"`
	TotalQuestions   int    `json:"total_questions"`
}

// StartQuizRequest configures roster assembly. Strategy is "random"
// (default) or "irt_information".
type StartQuizRequest struct {
	NumQuestions int    `json:"num_questions,omitempty"`
	Strategy     string `json:"strategy,omitempty"`
}

type StartQuizResponse struct {
	AttemptID        int64          `json:"attempt_id"`
	StartedAt        time.Time      `json:"started_at"`
	TimeLimitMinutes int            `json:"time_limit_minutes"`
	ExpiresAt        time.Time      `json:"expires_at"`
	Questions        []QuizQuestion `json:"questions"`
}

type QuizAnswer struct {
	QuestionID      int64  `json:"question_id"`
	AnswerSubmitted string `json:"answer_submitted"`
}

type SubmitQuizRequest struct {
	Answers []QuizAnswer `json:"answers"`
}

type QuizResultDetail struct {
	QuestionID     int64      `json:"question_id"`
	Stem           string     `json:"stem"`
	YourAnswer     string     `json:"your_answer"`
	CorrectAnswer  string     `json:"correct_answer"`
	IsCorrect      bool       `json:"is_correct"`
	BaseDifficulty Difficulty `json:"base_difficulty"`
}

type SubmitQuizResponse struct {
	AttemptID        int64              `json:"attempt_id"`
	Score            int                `json:"score"`
	TotalQuestions   int                `json:"total_questions"`
	ScorePercent     float64            `json:"score_percent"`
	Passed           bool               `json:"passed"`
	TimeTakenSeconds float64            `json:"time_taken_seconds"`
	Results          []QuizResultDetail `json:"results"`
	MasteryUpdated   float64            `json:"mastery_updated"`
}
