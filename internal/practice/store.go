package practice

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

// ── Topics ──────────────────────────────────────────────

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

func (s *Store) ListTopics() ([]models.Topic, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, name, description, estimated_time_min FROM topics ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.Description, &t.EstimatedTimeMin); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// ── Questions & Hints ───────────────────────────────────

func (s *Store) GetQuestion(questionID int64) (*models.Question, error) {
	var q models.Question
	err := s.db.QueryRow(
		`SELECT id, topic_id, stem, answer, base_difficulty, is_quiz_only, created_at
		 FROM questions WHERE id = $1`,
		questionID,
	).Scan(&q.ID, &q.TopicID, &q.Stem, &q.Answer, &q.BaseDifficulty, &q.IsQuizOnly, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("question %d: %w", questionID, adaptive.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

// ListQuestions returns the topic's item catalog. When includeQuizOnly is
// false only practice-eligible items are returned.
func (s *Store) ListQuestions(topicID int64, includeQuizOnly bool) ([]models.Question, error) {
	query := `SELECT id, topic_id, stem, answer, base_difficulty, is_quiz_only, created_at
	          FROM questions WHERE topic_id = $1`
	if !includeQuizOnly {
		query += ` AND is_quiz_only = FALSE`
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, topicID)
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

func (s *Store) GetHints(questionID int64) ([]models.Hint, error) {
	rows, err := s.db.Query(
		`SELECT id, question_id, ordering, hint_text FROM question_hints
		 WHERE question_id = $1 ORDER BY ordering`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get hints: %w", err)
	}
	defer rows.Close()

	var hints []models.Hint
	for rows.Next() {
		var h models.Hint
		if err := rows.Scan(&h.ID, &h.QuestionID, &h.Ordering, &h.Text); err != nil {
			return nil, fmt.Errorf("scan hint: %w", err)
		}
		hints = append(hints, h)
	}
	return hints, rows.Err()
}

func (s *Store) CountQuestions(topicID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM questions WHERE topic_id = $1 AND is_quiz_only = FALSE`,
		topicID,
	).Scan(&n)
	return n, err
}

// ── Mastery ─────────────────────────────────────────────

// GetMastery returns the learner's mastery on the topic and whether a row
// exists. Missing state is not an error.
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

// ── Attempts & Interactions ─────────────────────────────

func (s *Store) GetAttempt(attemptID int64) (*models.PracticeAttempt, error) {
	var a models.PracticeAttempt
	err := s.db.QueryRow(
		`SELECT id, user_id, topic_id, started_at, finished_at, current_interaction_id
		 FROM practice_attempts WHERE id = $1`,
		attemptID,
	).Scan(&a.ID, &a.UserID, &a.TopicID, &a.StartedAt, &a.FinishedAt, &a.CurrentInteractionID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attempt %d: %w", attemptID, adaptive.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return &a, nil
}

func (s *Store) GetInteraction(interactionID int64) (*models.PracticeInteraction, error) {
	var it models.PracticeInteraction
	err := s.db.QueryRow(
		`SELECT id, attempt_id, question_id, shown_difficulty, answer_submitted,
		        is_correct, hints_requested, time_seconds
		 FROM practice_interactions WHERE id = $1`,
		interactionID,
	).Scan(&it.ID, &it.AttemptID, &it.QuestionID, &it.ShownDifficulty,
		&it.AnswerSubmitted, &it.IsCorrect, &it.HintsRequested, &it.TimeSeconds)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("interaction %d: %w", interactionID, adaptive.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get interaction: %w", err)
	}
	return &it, nil
}

// StartAttempt creates the attempt and its first open interaction in one
// transaction so a half-started attempt never exists.
func (s *Store) StartAttempt(ctx context.Context, userID, topicID, questionID int64, shown models.Difficulty) (*models.PracticeAttempt, *models.PracticeInteraction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var a models.PracticeAttempt
	err = tx.QueryRow(
		`INSERT INTO practice_attempts (user_id, topic_id) VALUES ($1, $2)
		 RETURNING id, user_id, topic_id, started_at`,
		userID, topicID,
	).Scan(&a.ID, &a.UserID, &a.TopicID, &a.StartedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("create attempt: %w", err)
	}

	var it models.PracticeInteraction
	err = tx.QueryRow(
		`INSERT INTO practice_interactions (attempt_id, question_id, shown_difficulty)
		 VALUES ($1, $2, $3)
		 RETURNING id, attempt_id, question_id, shown_difficulty, hints_requested`,
		a.ID, questionID, shown,
	).Scan(&it.ID, &it.AttemptID, &it.QuestionID, &it.ShownDifficulty, &it.HintsRequested)
	if err != nil {
		return nil, nil, fmt.Errorf("create interaction: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE practice_attempts SET current_interaction_id = $1 WHERE id = $2`,
		it.ID, a.ID,
	); err != nil {
		return nil, nil, fmt.Errorf("set current interaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	a.CurrentInteractionID = &it.ID
	return &a, &it, nil
}

// NextInteraction describes the interaction to open after a grade.
type NextInteraction struct {
	QuestionID int64
	Shown      models.Difficulty
}

// GradeUpdate is everything ApplyGrade persists atomically: the graded
// interaction, the new mastery value, and either the next open interaction
// or attempt completion.
type GradeUpdate struct {
	AttemptID     int64
	InteractionID int64
	UserID        int64
	TopicID       int64
	Answer        string
	IsCorrect     bool
	TimeSeconds   *float64
	NewMastery    float64
	Next          *NextInteraction
}

// ApplyGrade runs the whole post-submission write set in one transaction:
// a failed write leaves no partial state (mastery untouched, interaction
// still open).
func (s *Store) ApplyGrade(ctx context.Context, u GradeUpdate) (*models.PracticeInteraction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE practice_interactions
		 SET answer_submitted = $1, is_correct = $2, time_seconds = COALESCE($3, time_seconds)
		 WHERE id = $4`,
		u.Answer, u.IsCorrect, u.TimeSeconds, u.InteractionID,
	); err != nil {
		return nil, fmt.Errorf("grade interaction: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO mastery_states (user_id, topic_id, mastery, last_updated)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, topic_id)
		 DO UPDATE SET mastery = EXCLUDED.mastery, last_updated = NOW()`,
		u.UserID, u.TopicID, u.NewMastery,
	); err != nil {
		return nil, fmt.Errorf("upsert mastery: %w", err)
	}

	if u.Next == nil {
		if _, err := tx.Exec(
			`UPDATE practice_attempts SET finished_at = NOW(), current_interaction_id = NULL WHERE id = $1`,
			u.AttemptID,
		); err != nil {
			return nil, fmt.Errorf("finish attempt: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, nil
	}

	var it models.PracticeInteraction
	err = tx.QueryRow(
		`INSERT INTO practice_interactions (attempt_id, question_id, shown_difficulty)
		 VALUES ($1, $2, $3)
		 RETURNING id, attempt_id, question_id, shown_difficulty, hints_requested`,
		u.AttemptID, u.Next.QuestionID, u.Next.Shown,
	).Scan(&it.ID, &it.AttemptID, &it.QuestionID, &it.ShownDifficulty, &it.HintsRequested)
	if err != nil {
		return nil, fmt.Errorf("open next interaction: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE practice_attempts SET current_interaction_id = $1 WHERE id = $2`,
		it.ID, u.AttemptID,
	); err != nil {
		return nil, fmt.Errorf("set current interaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &it, nil
}

func (s *Store) SetHintsRequested(interactionID int64, count int) error {
	_, err := s.db.Exec(
		`UPDATE practice_interactions SET hints_requested = $1 WHERE id = $2`,
		count, interactionID,
	)
	if err != nil {
		return fmt.Errorf("set hints requested: %w", err)
	}
	return nil
}

// ── History ─────────────────────────────────────────────

// TopicHistory returns every interaction the user has on the topic,
// across all attempts, in chronological order.
func (s *Store) TopicHistory(userID, topicID int64) ([]models.PracticeInteraction, error) {
	rows, err := s.db.Query(
		`SELECT pi.id, pi.attempt_id, pi.question_id, pi.shown_difficulty,
		        pi.answer_submitted, pi.is_correct, pi.hints_requested, pi.time_seconds
		 FROM practice_interactions pi
		 JOIN practice_attempts pa ON pa.id = pi.attempt_id
		 WHERE pa.user_id = $1 AND pa.topic_id = $2
		 ORDER BY pi.id`,
		userID, topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("topic history: %w", err)
	}
	defer rows.Close()

	var history []models.PracticeInteraction
	for rows.Next() {
		var it models.PracticeInteraction
		if err := rows.Scan(&it.ID, &it.AttemptID, &it.QuestionID, &it.ShownDifficulty,
			&it.AnswerSubmitted, &it.IsCorrect, &it.HintsRequested, &it.TimeSeconds); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		history = append(history, it)
	}
	return history, rows.Err()
}

func (s *Store) AttemptInteractions(attemptID int64) ([]models.PracticeInteraction, error) {
	rows, err := s.db.Query(
		`SELECT id, attempt_id, question_id, shown_difficulty, answer_submitted,
		        is_correct, hints_requested, time_seconds
		 FROM practice_interactions WHERE attempt_id = $1 ORDER BY id`,
		attemptID,
	)
	if err != nil {
		return nil, fmt.Errorf("attempt interactions: %w", err)
	}
	defer rows.Close()

	var interactions []models.PracticeInteraction
	for rows.Next() {
		var it models.PracticeInteraction
		if err := rows.Scan(&it.ID, &it.AttemptID, &it.QuestionID, &it.ShownDifficulty,
			&it.AnswerSubmitted, &it.IsCorrect, &it.HintsRequested, &it.TimeSeconds); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		interactions = append(interactions, it)
	}
	return interactions, rows.Err()
}

// QuestionStat is the user's lifetime record on one question.
type QuestionStat struct {
	Correct int
	Graded  int
}

// QuestionStats returns per-question graded/correct counts for the user on
// the topic, used for selection weighting. Questions never answered have no
// entry.
func (s *Store) QuestionStats(userID, topicID int64) (map[int64]QuestionStat, error) {
	rows, err := s.db.Query(
		`SELECT pi.question_id,
		        COUNT(*) FILTER (WHERE pi.is_correct IS NOT NULL),
		        COUNT(*) FILTER (WHERE pi.is_correct = TRUE)
		 FROM practice_interactions pi
		 JOIN practice_attempts pa ON pa.id = pi.attempt_id
		 WHERE pa.user_id = $1 AND pa.topic_id = $2
		 GROUP BY pi.question_id`,
		userID, topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("question stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[int64]QuestionStat)
	for rows.Next() {
		var qid int64
		var st QuestionStat
		if err := rows.Scan(&qid, &st.Graded, &st.Correct); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		if st.Graded > 0 {
			stats[qid] = st
		}
	}
	return stats, rows.Err()
}

// DistinctAnswered counts how many distinct questions on the topic the user
// has ever answered, right or wrong.
func (s *Store) DistinctAnswered(userID, topicID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT pi.question_id)
		 FROM practice_interactions pi
		 JOIN practice_attempts pa ON pa.id = pi.attempt_id
		 WHERE pa.user_id = $1 AND pa.topic_id = $2 AND pi.answer_submitted IS NOT NULL`,
		userID, topicID,
	).Scan(&n)
	return n, err
}
