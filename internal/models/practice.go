package models

import "time"

// PracticeAttempt tracks one adaptive practice run. CurrentInteractionID
// points at the single open (ungraded) interaction, or is nil once the
// attempt finishes.
type PracticeAttempt struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	TopicID              int64      `json:"topic_id"`
	StartedAt            time.Time  `json:"started_at"`
	FinishedAt           *time.Time `json:"finished_at,omitempty"`
	CurrentInteractionID *int64     `json:"-"`
}

// PracticeInteraction records one exposure of a question within an attempt.
// AnswerSubmitted and IsCorrect stay nil until the interaction is graded;
// at most one ungraded interaction exists per attempt.
type PracticeInteraction struct {
	ID              int64      `json:"id"`
	AttemptID       int64      `json:"attempt_id"`
	QuestionID      int64      `json:"question_id"`
	ShownDifficulty Difficulty `json:"shown_difficulty"`
	AnswerSubmitted *string    `json:"answer_submitted,omitempty"`
	IsCorrect       *bool      `json:"is_correct,omitempty"`
	HintsRequested  int        `json:"hints_requested"`
	TimeSeconds     *float64   `json:"time_seconds,omitempty"`
}

// Graded reports whether the interaction has been scored.
func (i PracticeInteraction) Graded() bool {
	return i.AnswerSubmitted != nil
}

type PracticeInfoResponse struct {
	TopicID        int64   `json:"topic_id"`
	TopicName      string  `json:"topic_name"`
	TopicSlug      string  `json:"topic_slug"`
	TotalQuestions int     `json:"total_questions"`
	Description    *string `json:"description,omitempty"`
}

type PracticeTopicSummary struct {
	ID                 int64    `json:"id"`
	Slug               string   `json:"slug"`
	Name               string   `json:"name"`
	Description        *string  `json:"description,omitempty"`
	EstimatedTimeMin   *int     `json:"estimated_time_min,omitempty"`
	TotalQuestions     int      `json:"total_questions"`
	CompletedQuestions int      `json:"completed_questions"`
	Mastery            *float64 `json:"mastery,omitempty"`
}

type PracticeQuestion struct {
	QuestionID      int64      `json:"question_id"`
	Stem            string     `json:"stem"`
	BaseDifficulty  Difficulty `json:"base_difficulty"`
	ShownDifficulty Difficulty `json:"shown_difficulty"`
}

type StartPracticeResponse struct {
	AttemptID          int64            `json:"attempt_id"`
	TopicID            int64            `json:"topic_id"`
	StartedAt          time.Time        `json:"started_at"`
	CurrentQuestion    PracticeQuestion `json:"current_question"`
	QuestionsCompleted int              `json:"questions_completed"`
	Score              int              `json:"score"`
}

type SubmitAnswerRequest struct {
	AnswerSubmitted string   `json:"answer_submitted"`
	TimeSeconds     *float64 `json:"time_seconds,omitempty"`
}

type SubmitAnswerResponse struct {
	IsCorrect          bool              `json:"is_correct"`
	CorrectAnswer      string            `json:"correct_answer"`
	NextQuestion       *PracticeQuestion `json:"next_question,omitempty"`
	NextDifficulty     *Difficulty       `json:"next_difficulty,omitempty"`
	QuestionsCompleted int               `json:"questions_completed"`
	Score              int               `json:"score"`
	SessionComplete    bool              `json:"session_complete"`
	MasteryUpdated     float64           `json:"mastery_updated"`
}

type HintResponse struct {
	HintLevel      int    `json:"hint_level"`
	HintText       string `json:"hint_text"`
	HintsRemaining int    `json:"hints_remaining"`
	PredictedLevel *int   `json:"predicted_level,omitempty"`
}
