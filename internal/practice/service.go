package practice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brightsum/backend/internal/adaptive"
	"github.com/brightsum/backend/internal/models"
)

// Storage is the persistence surface the practice engine needs. *Store is
// the production implementation; tests substitute an in-memory fake.
type Storage interface {
	GetTopicBySlug(slug string) (*models.Topic, error)
	ListTopics() ([]models.Topic, error)
	GetQuestion(questionID int64) (*models.Question, error)
	ListQuestions(topicID int64, includeQuizOnly bool) ([]models.Question, error)
	GetHints(questionID int64) ([]models.Hint, error)
	CountQuestions(topicID int64) (int, error)
	GetMastery(userID, topicID int64) (float64, bool, error)
	GetAttempt(attemptID int64) (*models.PracticeAttempt, error)
	GetInteraction(interactionID int64) (*models.PracticeInteraction, error)
	StartAttempt(ctx context.Context, userID, topicID, questionID int64, shown models.Difficulty) (*models.PracticeAttempt, *models.PracticeInteraction, error)
	ApplyGrade(ctx context.Context, u GradeUpdate) (*models.PracticeInteraction, error)
	SetHintsRequested(interactionID int64, count int) error
	TopicHistory(userID, topicID int64) ([]models.PracticeInteraction, error)
	AttemptInteractions(attemptID int64) ([]models.PracticeInteraction, error)
	QuestionStats(userID, topicID int64) (map[int64]QuestionStat, error)
	DistinctAnswered(userID, topicID int64) (int, error)
}

type Service struct {
	store       Storage
	correctness adaptive.CorrectnessModel
	hints       adaptive.HintModel
	rng         *rand.Rand
}

func NewService(store Storage, correctness adaptive.CorrectnessModel, hints adaptive.HintModel) *Service {
	return &Service{
		store:       store,
		correctness: correctness,
		hints:       hints,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ── Topic Catalog ───────────────────────────────────────

func (s *Service) TopicSummaries(userID int64) ([]models.PracticeTopicSummary, error) {
	topics, err := s.store.ListTopics()
	if err != nil {
		return nil, err
	}

	summaries := make([]models.PracticeTopicSummary, 0, len(topics))
	for _, t := range topics {
		total, err := s.store.CountQuestions(t.ID)
		if err != nil {
			return nil, err
		}
		completed, err := s.store.DistinctAnswered(userID, t.ID)
		if err != nil {
			return nil, err
		}

		summary := models.PracticeTopicSummary{
			ID:                 t.ID,
			Slug:               t.Slug,
			Name:               t.Name,
			Description:        t.Description,
			EstimatedTimeMin:   t.EstimatedTimeMin,
			TotalQuestions:     total,
			CompletedQuestions: completed,
		}
		if m, ok, err := s.store.GetMastery(userID, t.ID); err != nil {
			return nil, err
		} else if ok {
			mastery := m
			summary.Mastery = &mastery
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Service) Info(slug string) (*models.PracticeInfoResponse, error) {
	topic, err := s.store.GetTopicBySlug(slug)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountQuestions(topic.ID)
	if err != nil {
		return nil, err
	}
	return &models.PracticeInfoResponse{
		TopicID:        topic.ID,
		TopicName:      topic.Name,
		TopicSlug:      topic.Slug,
		TotalQuestions: total,
		Description:    topic.Description,
	}, nil
}

// ── Attempt Flow ────────────────────────────────────────

// StartAttempt opens a new practice run on the topic and materializes the
// first open interaction immediately.
func (s *Service) StartAttempt(ctx context.Context, userID int64, slug string) (*models.StartPracticeResponse, error) {
	topic, err := s.store.GetTopicBySlug(slug)
	if err != nil {
		return nil, err
	}

	mastery := s.currentMastery(userID, topic.ID)
	history, err := s.store.TopicHistory(userID, topic.ID)
	if err != nil {
		return nil, err
	}

	// Before any item is chosen the feature vector still needs a difficulty
	// band; use the band of the candidate the selector would favor.
	pool, err := s.store.ListQuestions(topic.ID, false)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.QuestionStats(userID, topic.ID)
	if err != nil {
		return nil, err
	}

	features := adaptive.AggregateFeatures(history, mastery, representativeBand(pool, stats))
	target := adaptive.ChooseDifficulty(s.correctness, features)

	question, shown, err := s.selectNext(userID, topic.ID, nil, target)
	if err != nil {
		return nil, err
	}

	attempt, _, err := s.store.StartAttempt(ctx, userID, topic.ID, question.ID, shown)
	if err != nil {
		return nil, err
	}

	return &models.StartPracticeResponse{
		AttemptID: attempt.ID,
		TopicID:   topic.ID,
		StartedAt: attempt.StartedAt,
		CurrentQuestion: models.PracticeQuestion{
			QuestionID:      question.ID,
			Stem:            question.Stem,
			BaseDifficulty:  question.BaseDifficulty,
			ShownDifficulty: shown,
		},
	}, nil
}

// SubmitAnswer grades the open interaction, updates mastery, and either
// opens the next interaction or completes the attempt when the pool is
// exhausted. All writes land in one transaction.
func (s *Service) SubmitAnswer(ctx context.Context, userID, attemptID int64, req models.SubmitAnswerRequest) (*models.SubmitAnswerResponse, error) {
	attempt, err := s.store.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("attempt %d: %w", attemptID, adaptive.ErrForbidden)
	}
	if attempt.FinishedAt != nil || attempt.CurrentInteractionID == nil {
		return nil, fmt.Errorf("attempt %d has no open interaction: %w", attemptID, adaptive.ErrInvalidState)
	}

	interaction, err := s.store.GetInteraction(*attempt.CurrentInteractionID)
	if err != nil {
		return nil, err
	}
	question, err := s.store.GetQuestion(interaction.QuestionID)
	if err != nil {
		return nil, err
	}

	isCorrect := gradeAnswer(req.AnswerSubmitted, question.Answer)

	// The prior here seeds a durable write, so a failed read must abort the
	// submit rather than degrade to the default.
	prior, hasMastery, err := s.store.GetMastery(userID, attempt.TopicID)
	if err != nil {
		return nil, err
	}
	if !hasMastery {
		prior = adaptive.DefaultMastery
	}
	newMastery := adaptive.UpdateMastery(prior, isCorrect)

	// Select the next item using history that includes the outcome just
	// observed, so the difficulty choice reacts to it.
	history, err := s.store.TopicHistory(userID, attempt.TopicID)
	if err != nil {
		return nil, err
	}
	answered := req.AnswerSubmitted
	graded := *interaction
	graded.AnswerSubmitted = &answered
	graded.IsCorrect = &isCorrect
	graded.TimeSeconds = req.TimeSeconds
	projected := projectGrade(history, graded)

	features := adaptive.AggregateFeatures(projected, newMastery, question.BaseDifficulty)
	target := adaptive.ChooseDifficulty(s.correctness, features)

	used, err := s.attemptUsed(attemptID)
	if err != nil {
		return nil, err
	}

	update := GradeUpdate{
		AttemptID:     attemptID,
		InteractionID: interaction.ID,
		UserID:        userID,
		TopicID:       attempt.TopicID,
		Answer:        req.AnswerSubmitted,
		IsCorrect:     isCorrect,
		TimeSeconds:   req.TimeSeconds,
		NewMastery:    newMastery,
	}

	var nextQuestion *models.PracticeQuestion
	var nextDifficulty *models.Difficulty
	next, shown, selectErr := s.selectNext(userID, attempt.TopicID, used, target)
	switch {
	case selectErr == nil:
		update.Next = &NextInteraction{QuestionID: next.ID, Shown: shown}
		nextQuestion = &models.PracticeQuestion{
			QuestionID:      next.ID,
			Stem:            next.Stem,
			BaseDifficulty:  next.BaseDifficulty,
			ShownDifficulty: shown,
		}
		d := shown
		nextDifficulty = &d
	case errors.Is(selectErr, adaptive.ErrExhausted):
		// Pool exhausted: the attempt completes instead of erroring.
	default:
		return nil, selectErr
	}

	if _, err := s.store.ApplyGrade(ctx, update); err != nil {
		return nil, err
	}

	completed, score, err := s.attemptProgress(attemptID)
	if err != nil {
		return nil, err
	}

	return &models.SubmitAnswerResponse{
		IsCorrect:          isCorrect,
		CorrectAnswer:      question.Answer,
		NextQuestion:       nextQuestion,
		NextDifficulty:     nextDifficulty,
		QuestionsCompleted: completed,
		Score:              score,
		SessionComplete:    nextQuestion == nil,
		MasteryUpdated:     newMastery,
	}, nil
}

// RequestHint delivers the next hint for the open interaction. The hint
// index never goes backwards within an interaction, and requesting past the
// last hint reports exhaustion.
func (s *Service) RequestHint(ctx context.Context, userID, attemptID int64) (*models.HintResponse, error) {
	attempt, err := s.store.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("attempt %d: %w", attemptID, adaptive.ErrForbidden)
	}
	if attempt.FinishedAt != nil || attempt.CurrentInteractionID == nil {
		return nil, fmt.Errorf("attempt %d has no open interaction: %w", attemptID, adaptive.ErrInvalidState)
	}

	interaction, err := s.store.GetInteraction(*attempt.CurrentInteractionID)
	if err != nil {
		return nil, err
	}
	question, err := s.store.GetQuestion(interaction.QuestionID)
	if err != nil {
		return nil, err
	}
	hints, err := s.store.GetHints(question.ID)
	if err != nil {
		return nil, err
	}
	if len(hints) == 0 {
		return nil, fmt.Errorf("question %d has no hints: %w", question.ID, adaptive.ErrExhausted)
	}

	history, err := s.store.TopicHistory(userID, attempt.TopicID)
	if err != nil {
		return nil, err
	}
	features := adaptive.AggregateFeatures(history, s.currentMastery(userID, attempt.TopicID), question.BaseDifficulty)

	choice, err := adaptive.ResolveHint(s.hints, features, interaction.HintsRequested, len(hints))
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", question.ID, err)
	}

	if err := s.store.SetHintsRequested(interaction.ID, choice.Index+1); err != nil {
		return nil, err
	}

	return &models.HintResponse{
		HintLevel:      choice.Index + 1,
		HintText:       hints[choice.Index].Text,
		HintsRemaining: len(hints) - (choice.Index + 1),
		PredictedLevel: choice.PredictedLevel,
	}, nil
}

// ── Selection ───────────────────────────────────────────

// selectNext picks the next question for the attempt. Candidates at the
// target difficulty are tried first; the pool widens to all practice items,
// then to quiz-only items, before reporting exhaustion. Questions already
// issued in this attempt are never repeated. Items the user has never
// answered are preferred outright; otherwise weighting resurfaces past
// mistakes. The shown difficulty follows the served item's band, which can
// differ from the target once the pool has widened.
func (s *Service) selectNext(userID, topicID int64, used map[int64]bool, target models.Difficulty) (*models.Question, models.Difficulty, error) {
	practice, err := s.store.ListQuestions(topicID, false)
	if err != nil {
		return nil, "", err
	}

	pool := filterQuestions(practice, used, &target)
	if len(pool) == 0 {
		pool = filterQuestions(practice, used, nil)
	}
	if len(pool) == 0 {
		all, err := s.store.ListQuestions(topicID, true)
		if err != nil {
			return nil, "", err
		}
		pool = filterQuestions(all, used, nil)
	}
	if len(pool) == 0 {
		return nil, "", fmt.Errorf("topic %d: %w", topicID, adaptive.ErrExhausted)
	}

	stats, err := s.store.QuestionStats(userID, topicID)
	if err != nil {
		return nil, "", err
	}

	if unseen := unseenQuestions(pool, stats); len(unseen) > 0 {
		pool = unseen
	}

	weights := make([]float64, len(pool))
	for i, q := range pool {
		st := stats[q.ID]
		weights[i] = adaptive.SelectionWeight(st.Correct, st.Graded)
	}

	picked := pool[adaptive.WeightedPick(s.rng, weights)]
	return &picked, picked.BaseDifficulty, nil
}

func unseenQuestions(questions []models.Question, stats map[int64]QuestionStat) []models.Question {
	var out []models.Question
	for _, q := range questions {
		if stats[q.ID].Graded == 0 {
			out = append(out, q)
		}
	}
	return out
}

func filterQuestions(questions []models.Question, used map[int64]bool, difficulty *models.Difficulty) []models.Question {
	var out []models.Question
	for _, q := range questions {
		if used[q.ID] {
			continue
		}
		if difficulty != nil && q.BaseDifficulty != *difficulty {
			continue
		}
		out = append(out, q)
	}
	return out
}

// representativeBand is the base difficulty fed to the feature vector when
// no item has been served yet: the first unseen question's band, else the
// first question's, else medium for an empty topic.
func representativeBand(pool []models.Question, stats map[int64]QuestionStat) models.Difficulty {
	for _, q := range pool {
		if stats[q.ID].Graded == 0 {
			return q.BaseDifficulty
		}
	}
	if len(pool) > 0 {
		return pool[0].BaseDifficulty
	}
	return models.DifficultyMedium
}

// ── Helpers ─────────────────────────────────────────────

// currentMastery tolerates read failures and is only for feature vectors;
// anything feeding a durable write reads mastery explicitly.
func (s *Service) currentMastery(userID, topicID int64) float64 {
	m, ok, err := s.store.GetMastery(userID, topicID)
	if err != nil || !ok {
		return adaptive.DefaultMastery
	}
	return m
}

func (s *Service) attemptUsed(attemptID int64) (map[int64]bool, error) {
	interactions, err := s.store.AttemptInteractions(attemptID)
	if err != nil {
		return nil, err
	}
	used := make(map[int64]bool, len(interactions))
	for _, it := range interactions {
		used[it.QuestionID] = true
	}
	return used, nil
}

func (s *Service) attemptProgress(attemptID int64) (completed, score int, err error) {
	interactions, err := s.store.AttemptInteractions(attemptID)
	if err != nil {
		return 0, 0, err
	}
	for _, it := range interactions {
		if it.Graded() {
			completed++
			if it.IsCorrect != nil && *it.IsCorrect {
				score++
			}
		}
	}
	return completed, score, nil
}

// projectGrade returns history with the freshly graded interaction swapped
// in for its open row.
func projectGrade(history []models.PracticeInteraction, graded models.PracticeInteraction) []models.PracticeInteraction {
	out := make([]models.PracticeInteraction, len(history))
	copy(out, history)
	for i := range out {
		if out[i].ID == graded.ID {
			out[i] = graded
			return out
		}
	}
	return append(out, graded)
}

func gradeAnswer(submitted, canonical string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(canonical))
}
