package quiz

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brightsum/backend/internal/adaptive"
	"github.com/brightsum/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetTopicBySlug(slug string) (*models.Topic, error) {
	var t models.Topic
	err := s.db.QueryRow(
		`SELECT id, slug, name, description, estimated_time_min FROM topics WHERE slug = $1`,
		slug,
	).Scan(&t.ID, &t.Slug, &t.Name, &t.Description, &t.EstimatedTimeMin)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("topic %q: %w", slug, adaptive.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return &t, nil
}

// ListQuestions returns the full item catalog for the topic. Quizzes draw
// from practice and quiz-only items alike.
func (s *Store) ListQuestions(topicID int64) ([]models.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, topic_id, stem, answer, base_difficulty, is_quiz_only, created_at
		 FROM questions WHERE topic_id = $1 ORDER BY id`,
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.TopicID, &q.Stem, &q.Answer, &q.BaseDifficulty, &q.IsQuizOnly, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ItemParams returns fitted IRT coefficients for the topic's questions.
// Questions without a fit have no entry.
func (s *Store) ItemParams(topicID int64) (map[int64]adaptive.ItemParams, error) {
	rows, err := s.db.Query(
		`SELECT p.question_id, p.w0, p.w1
		 FROM question_irt_params p
		 JOIN questions q ON q.id = p.question_id
		 WHERE q.topic_id = $1`,
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("item params: %w", err)
	}
	defer rows.Close()

	params := make(map[int64]adaptive.ItemParams)
	for rows.Next() {
		var qid int64
		var p adaptive.ItemParams
		if err := rows.Scan(&qid, &p.W0, &p.W1); err != nil {
			return nil, fmt.Errorf("scan params: %w", err)
		}
		params[qid] = p
	}
	return params, rows.Err()
}

func (s *Store) GetMastery(userID, topicID int64) (float64, bool, error) {
	var m float64
	err := s.db.QueryRow(
		`SELECT mastery FROM mastery_states WHERE user_id = $1 AND topic_id = $2`,
		userID, topicID,
	).Scan(&m)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get mastery: %w", err)
	}
	return m, true, nil
}

func (s *Store) GetAttempt(attemptID int64) (*models.QuizAttempt, error) {
	var a models.QuizAttempt
	err := s.db.QueryRow(
		`SELECT id, user_id, topic_id, started_at, finished_at, score_percent, passed
		 FROM quiz_attempts WHERE id = $1`,
		attemptID,
	).Scan(&a.ID, &a.UserID, &a.TopicID, &a.StartedAt, &a.FinishedAt, &a.ScorePercent, &a.Passed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quiz attempt %d: %w", attemptID, adaptive.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz attempt: %w", err)
	}
	return &a, nil
}

// RosterSlot is one roster entry to persist at quiz start.
type RosterSlot struct {
	QuestionID int64
	Position   int
	InfoScore  *float64
}

// CreateAttempt persists the attempt and its immutable roster in one
// transaction. The roster is never modified afterwards.
func (s *Store) CreateAttempt(ctx context.Context, userID, topicID int64, roster []RosterSlot) (*models.QuizAttempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var a models.QuizAttempt
	err = tx.QueryRow(
		`INSERT INTO quiz_attempts (user_id, topic_id) VALUES ($1, $2)
		 RETURNING id, user_id, topic_id, started_at`,
		userID, topicID,
	).Scan(&a.ID, &a.UserID, &a.TopicID, &a.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("create quiz attempt: %w", err)
	}

	for _, slot := range roster {
		if _, err := tx.Exec(
			`INSERT INTO quiz_attempt_questions (attempt_id, question_id, position, info_score)
			 VALUES ($1, $2, $3, $4)`,
			a.ID, slot.QuestionID, slot.Position, slot.InfoScore,
		); err != nil {
			return nil, fmt.Errorf("persist roster slot %d: %w", slot.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &a, nil
}

func (s *Store) GetRoster(attemptID int64) ([]models.QuizRosterItem, error) {
	rows, err := s.db.Query(
		`SELECT id, attempt_id, question_id, position, info_score, is_correct, given_answer
		 FROM quiz_attempt_questions WHERE attempt_id = $1 ORDER BY position`,
		attemptID,
	)
	if err != nil {
		return nil, fmt.Errorf("get roster: %w", err)
	}
	defer rows.Close()

	var roster []models.QuizRosterItem
	for rows.Next() {
		var item models.QuizRosterItem
		if err := rows.Scan(&item.ID, &item.AttemptID, &item.QuestionID, &item.Position,
			&item.InfoScore, &item.IsCorrect, &item.GivenAnswer); err != nil {
			return nil, fmt.Errorf("scan roster item: %w", err)
		}
		roster = append(roster, item)
	}
	return roster, rows.Err()
}

func (s *Store) GetQuestionsByIDs(ids []int64) (map[int64]models.Question, error) {
	questions := make(map[int64]models.Question, len(ids))
	for _, id := range ids {
		var q models.Question
		err := s.db.QueryRow(
			`SELECT id, topic_id, stem, answer, base_difficulty, is_quiz_only, created_at
			 FROM questions WHERE id = $1`,
			id,
		).Scan(&q.ID, &q.TopicID, &q.Stem, &q.Answer, &q.BaseDifficulty, &q.IsQuizOnly, &q.CreatedAt)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("question %d: %w", id, adaptive.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("get question: %w", err)
		}
		questions[id] = q
	}
	return questions, nil
}

// GradedSlot carries one roster item's grading outcome.
type GradedSlot struct {
	RosterID    int64
	IsCorrect   bool
	GivenAnswer string
}

// QuizResult is the whole write set of a quiz submission.
type QuizResult struct {
	AttemptID    int64
	UserID       int64
	TopicID      int64
	ScorePercent float64
	Passed       bool
	NewMastery   float64
	Slots        []GradedSlot
}

// FinalizeSubmit grades the roster, completes the attempt, and updates
// mastery atomically. A failure leaves the attempt open and mastery
// untouched.
func (s *Store) FinalizeSubmit(ctx context.Context, r QuizResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, slot := range r.Slots {
		if _, err := tx.Exec(
			`UPDATE quiz_attempt_questions SET is_correct = $1, given_answer = $2 WHERE id = $3`,
			slot.IsCorrect, slot.GivenAnswer, slot.RosterID,
		); err != nil {
			return fmt.Errorf("grade roster item %d: %w", slot.RosterID, err)
		}
	}

	if _, err := tx.Exec(
		`UPDATE quiz_attempts SET finished_at = NOW(), score_percent = $1, passed = $2 WHERE id = $3`,
		r.ScorePercent, r.Passed, r.AttemptID,
	); err != nil {
		return fmt.Errorf("complete quiz attempt: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO mastery_states (user_id, topic_id, mastery, last_updated)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, topic_id)
		 DO UPDATE SET mastery = EXCLUDED.mastery, last_updated = NOW()`,
		r.UserID, r.TopicID, r.NewMastery,
	); err != nil {
		return fmt.Errorf("upsert mastery: %w", err)
	}

	return tx.Commit()
}

func (s *Store) CountQuestions(topicID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM questions WHERE topic_id = $1`,
		topicID,
	).Scan(&n)
	return n, err
}
