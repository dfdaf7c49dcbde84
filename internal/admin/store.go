package admin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brightsum/backend/internal/adaptive"
	"github.com/brightsum/backend/internal/generator"
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

// SaveGeneratedItems inserts the generated questions and their hint ladders
// in one transaction. Ordering of hints follows their ladder position.
func (s *Store) SaveGeneratedItems(ctx context.Context, topicID int64, items []generator.GeneratedQuestion, difficulty models.Difficulty, quizOnly bool) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	saved := 0
	for _, item := range items {
		var questionID int64
		err := tx.QueryRow(
			`INSERT INTO questions (topic_id, stem, answer, base_difficulty, is_quiz_only)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			topicID, item.Stem, item.Answer, difficulty, quizOnly,
		).Scan(&questionID)
		if err != nil {
			return 0, fmt.Errorf("insert question: %w", err)
		}

		for i, hint := range item.Hints {
			if _, err := tx.Exec(
				`INSERT INTO question_hints (question_id, ordering, hint_text) VALUES ($1, $2, $3)`,
				questionID, i+1, hint,
			); err != nil {
				return 0, fmt.Errorf("insert hint: %w", err)
			}
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}
