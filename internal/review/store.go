package review

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/brightsum/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GradedRow is one graded practice interaction flattened for aggregation.
type GradedRow struct {
	TopicName       string
	ShownDifficulty models.Difficulty
	IsCorrect       bool
	HintsRequested  int
}

// SummaryFilter narrows the summary to a topic, difficulty band, or date
// range. Zero values mean no restriction; dates apply to the attempt start.
type SummaryFilter struct {
	TopicSlug  string
	Difficulty string
	From       *time.Time
	To         *time.Time
}

// GradedInteractions returns the user's graded practice interactions
// matching the filter, across all topics by default.
func (s *Store) GradedInteractions(userID int64, f SummaryFilter) ([]GradedRow, error) {
	where := `pa.user_id = $1 AND pi.is_correct IS NOT NULL`
	args := []interface{}{userID}
	if f.TopicSlug != "" {
		args = append(args, f.TopicSlug)
		where += fmt.Sprintf(" AND t.slug = $%d", len(args))
	}
	if f.Difficulty != "" {
		args = append(args, f.Difficulty)
		where += fmt.Sprintf(" AND pi.shown_difficulty = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(" AND pa.started_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(" AND pa.started_at <= $%d", len(args))
	}

	rows, err := s.db.Query(
		`SELECT t.name, pi.shown_difficulty, pi.is_correct, pi.hints_requested
		 FROM practice_interactions pi
		 JOIN practice_attempts pa ON pa.id = pi.attempt_id
		 JOIN topics t ON t.id = pa.topic_id
		 WHERE `+where+`
		 ORDER BY pi.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("graded interactions: %w", err)
	}
	defer rows.Close()

	var out []GradedRow
	for rows.Next() {
		var r GradedRow
		if err := rows.Scan(&r.TopicName, &r.ShownDifficulty, &r.IsCorrect, &r.HintsRequested); err != nil {
			return nil, fmt.Errorf("scan graded row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentSessions returns the user's latest practice and quiz attempts,
// newest first.
func (s *Store) RecentSessions(userID int64, limit int) ([]models.RecentSession, error) {
	rows, err := s.db.Query(
		`SELECT kind, topic_name, started_at, answered, correct, score_percent, passed FROM (
		   SELECT 'practice' AS kind, t.name AS topic_name, pa.started_at,
		          COUNT(pi.id) FILTER (WHERE pi.is_correct IS NOT NULL) AS answered,
		          COUNT(pi.id) FILTER (WHERE pi.is_correct = TRUE) AS correct,
		          NULL::double precision AS score_percent, NULL::boolean AS passed
		   FROM practice_attempts pa
		   JOIN topics t ON t.id = pa.topic_id
		   LEFT JOIN practice_interactions pi ON pi.attempt_id = pa.id
		   WHERE pa.user_id = $1
		   GROUP BY pa.id, t.name, pa.started_at
		   UNION ALL
		   SELECT 'quiz' AS kind, t.name AS topic_name, qa.started_at,
		          COUNT(qq.id) FILTER (WHERE qq.is_correct IS NOT NULL) AS answered,
		          COUNT(qq.id) FILTER (WHERE qq.is_correct = TRUE) AS correct,
		          qa.score_percent, qa.passed
		   FROM quiz_attempts qa
		   JOIN topics t ON t.id = qa.topic_id
		   LEFT JOIN quiz_attempt_questions qq ON qq.attempt_id = qa.id
		   WHERE qa.user_id = $1
		   GROUP BY qa.id, t.name, qa.started_at, qa.score_percent, qa.passed
		 ) sessions
		 ORDER BY started_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.RecentSession
	for rows.Next() {
		var sess models.RecentSession
		if err := rows.Scan(&sess.Kind, &sess.TopicName, &sess.StartedAt,
			&sess.Answered, &sess.Correct, &sess.ScorePercent, &sess.Passed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// MistakeFilter narrows the mistakes list.
type MistakeFilter struct {
	TopicSlug  string
	Difficulty string
	Page       int
	PageSize   int
}

// Mistakes returns the user's incorrectly answered practice questions,
// newest first, with the total match count for pagination.
func (s *Store) Mistakes(userID int64, f MistakeFilter) ([]models.MistakeQuestion, int, error) {
	where := `pa.user_id = $1 AND pi.is_correct = FALSE`
	args := []interface{}{userID}
	if f.TopicSlug != "" {
		args = append(args, f.TopicSlug)
		where += fmt.Sprintf(" AND t.slug = $%d", len(args))
	}
	if f.Difficulty != "" {
		args = append(args, f.Difficulty)
		where += fmt.Sprintf(" AND q.base_difficulty = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*)
		 FROM practice_interactions pi
		 JOIN practice_attempts pa ON pa.id = pi.attempt_id
		 JOIN topics t ON t.id = pa.topic_id
		 JOIN questions q ON q.id = pi.question_id
		 WHERE ` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count mistakes: %w", err)
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(
		`SELECT q.id, t.name, q.stem, pi.answer_submitted, q.answer, q.base_difficulty, pi.hints_requested
		 FROM practice_interactions pi
		 JOIN practice_attempts pa ON pa.id = pi.attempt_id
		 JOIN topics t ON t.id = pa.topic_id
		 JOIN questions q ON q.id = pi.question_id
		 WHERE %s
		 ORDER BY pi.id DESC
		 LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args),
	)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list mistakes: %w", err)
	}
	defer rows.Close()

	var mistakes []models.MistakeQuestion
	for rows.Next() {
		var m models.MistakeQuestion
		var submitted sql.NullString
		if err := rows.Scan(&m.QuestionID, &m.TopicName, &m.Stem, &submitted,
			&m.CorrectAnswer, &m.BaseDifficulty, &m.HintsRequested); err != nil {
			return nil, 0, fmt.Errorf("scan mistake: %w", err)
		}
		m.YourAnswer = submitted.String
		mistakes = append(mistakes, m)
	}
	return mistakes, total, rows.Err()
}
