package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brightsum/backend/internal/adaptive"
	"github.com/brightsum/backend/internal/models"
)

const (
	// DefaultNumQuestions is the roster size when the client does not ask
	// for one.
	DefaultNumQuestions = 10
	// TimeLimitMinutes is the server-side quiz window; submissions past it
	// are rejected outright.
	TimeLimitMinutes = 25
	// PassPercent is the score threshold for passing, inclusive.
	PassPercent = 70.0

	// StrategyRandom samples the roster uniformly; StrategyIRT ranks by
	// Fisher information at the learner's mastery.
	StrategyRandom = "random"
	StrategyIRT    = "irt_information"
)

// Storage is the persistence surface the quiz engine needs.
type Storage interface {
	GetTopicBySlug(slug string) (*models.Topic, error)
	ListQuestions(topicID int64) ([]models.Question, error)
	ItemParams(topicID int64) (map[int64]adaptive.ItemParams, error)
	GetMastery(userID, topicID int64) (float64, bool, error)
	GetAttempt(attemptID int64) (*models.QuizAttempt, error)
	CreateAttempt(ctx context.Context, userID, topicID int64, roster []RosterSlot) (*models.QuizAttempt, error)
	GetRoster(attemptID int64) ([]models.QuizRosterItem, error)
	GetQuestionsByIDs(ids []int64) (map[int64]models.Question, error)
	FinalizeSubmit(ctx context.Context, r QuizResult) error
	CountQuestions(topicID int64) (int, error)
}

type Service struct {
	store Storage
	rng   *rand.Rand
}

func NewService(store Storage) *Service {
	return &Service{
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) Info(slug string) (*models.QuizInfoResponse, error) {
	topic, err := s.store.GetTopicBySlug(slug)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountQuestions(topic.ID)
	if err != nil {
		return nil, err
	}
	return &models.QuizInfoResponse{
		TopicID:          topic.ID,
		TopicName:        topic.Name,
		TopicSlug:        topic.Slug,
		TimeLimitMinutes: TimeLimitMinutes,
		TotalQuestions:   total,
	}, nil
}

// Start assembles and persists the quiz roster. Once committed the roster
// is immutable; submissions are graded against it and nothing else.
func (s *Service) Start(ctx context.Context, userID int64, slug string, req models.StartQuizRequest) (*models.StartQuizResponse, error) {
	topic, err := s.store.GetTopicBySlug(slug)
	if err != nil {
		return nil, err
	}

	pool, err := s.store.ListQuestions(topic.ID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("topic %q has no questions: %w", slug, adaptive.ErrExhausted)
	}

	size := req.NumQuestions
	if size <= 0 {
		size = DefaultNumQuestions
	}
	if size > len(pool) {
		size = len(pool)
	}

	var roster []RosterSlot
	var chosen []models.Question
	switch req.Strategy {
	case StrategyIRT:
		mastery := s.currentMastery(userID, topic.ID)
		params, err := s.store.ItemParams(topic.ID)
		if err != nil {
			return nil, err
		}
		candidates := make([]adaptive.Candidate, len(pool))
		for i, q := range pool {
			c := adaptive.Candidate{Question: q}
			if p, ok := params[q.ID]; ok {
				fitted := p
				c.Params = &fitted
			}
			candidates[i] = c
		}
		for i, item := range adaptive.SelectByInformation(mastery, candidates, size) {
			info := item.Information
			roster = append(roster, RosterSlot{QuestionID: item.Question.ID, Position: i + 1, InfoScore: &info})
			chosen = append(chosen, item.Question)
		}
	case "", StrategyRandom:
		shuffled := append([]models.Question(nil), pool...)
		s.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for i, q := range shuffled[:size] {
			roster = append(roster, RosterSlot{QuestionID: q.ID, Position: i + 1})
			chosen = append(chosen, q)
		}
	default:
		return nil, fmt.Errorf("unknown quiz strategy %q: %w", req.Strategy, adaptive.ErrInvalidState)
	}

	attempt, err := s.store.CreateAttempt(ctx, userID, topic.ID, roster)
	if err != nil {
		return nil, err
	}

	questions := make([]models.QuizQuestion, len(chosen))
	for i, q := range chosen {
		questions[i] = models.QuizQuestion{ID: q.ID, Stem: q.Stem, BaseDifficulty: q.BaseDifficulty}
	}

	return &models.StartQuizResponse{
		AttemptID:        attempt.ID,
		StartedAt:        attempt.StartedAt,
		TimeLimitMinutes: TimeLimitMinutes,
		ExpiresAt:        attempt.StartedAt.Add(TimeLimitMinutes * time.Minute),
		Questions:        questions,
	}, nil
}

// Submit grades the whole roster in one batch. Answers for questions not on
// the roster are ignored. Submissions past the time window are rejected
// before any grading happens, leaving the attempt open.
func (s *Service) Submit(ctx context.Context, userID, attemptID int64, req models.SubmitQuizRequest) (*models.SubmitQuizResponse, error) {
	attempt, err := s.store.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("quiz attempt %d: %w", attemptID, adaptive.ErrForbidden)
	}
	if attempt.FinishedAt != nil {
		return nil, fmt.Errorf("quiz attempt %d already submitted: %w", attemptID, adaptive.ErrInvalidState)
	}

	elapsed := time.Since(attempt.StartedAt)
	if elapsed > TimeLimitMinutes*time.Minute {
		return nil, fmt.Errorf("quiz attempt %d submitted after %.0fs: %w", attemptID, elapsed.Seconds(), adaptive.ErrTimeExceeded)
	}

	roster, err := s.store.GetRoster(attemptID)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("quiz attempt %d has no roster: %w", attemptID, adaptive.ErrInvalidState)
	}

	ids := make([]int64, len(roster))
	for i, item := range roster {
		ids[i] = item.QuestionID
	}
	questions, err := s.store.GetQuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}

	answers := make(map[int64]string, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.AnswerSubmitted
	}

	result := QuizResult{
		AttemptID: attemptID,
		UserID:    userID,
		TopicID:   attempt.TopicID,
	}
	details := make([]models.QuizResultDetail, 0, len(roster))
	correct := 0
	for _, item := range roster {
		q := questions[item.QuestionID]
		given := answers[item.QuestionID]
		isCorrect := gradeAnswer(given, q.Answer)
		if isCorrect {
			correct++
		}
		result.Slots = append(result.Slots, GradedSlot{
			RosterID:    item.ID,
			IsCorrect:   isCorrect,
			GivenAnswer: given,
		})
		details = append(details, models.QuizResultDetail{
			QuestionID:     q.ID,
			Stem:           q.Stem,
			YourAnswer:     given,
			CorrectAnswer:  q.Answer,
			IsCorrect:      isCorrect,
			BaseDifficulty: q.BaseDifficulty,
		})
	}

	result.ScorePercent = float64(correct) / float64(len(roster)) * 100.0
	result.Passed = result.ScorePercent >= PassPercent

	// One mastery update from the whole-quiz outcome: the first ever result
	// on a topic sets an initial level, later quizzes nudge the existing one.
	if prior, ok, err := s.store.GetMastery(userID, attempt.TopicID); err != nil {
		return nil, err
	} else if ok {
		result.NewMastery = adaptive.UpdateMastery(prior, result.Passed)
	} else {
		result.NewMastery = adaptive.InitialQuizMastery(result.Passed)
	}

	if err := s.store.FinalizeSubmit(ctx, result); err != nil {
		return nil, err
	}

	return &models.SubmitQuizResponse{
		AttemptID:        attemptID,
		Score:            correct,
		TotalQuestions:   len(roster),
		ScorePercent:     result.ScorePercent,
		Passed:           result.Passed,
		TimeTakenSeconds: elapsed.Seconds(),
		Results:          details,
		MasteryUpdated:   result.NewMastery,
	}, nil
}

func (s *Service) currentMastery(userID, topicID int64) float64 {
	m, ok, err := s.store.GetMastery(userID, topicID)
	if err != nil || !ok {
		return adaptive.DefaultMastery
	}
	return m
}

func gradeAnswer(submitted, canonical string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(canonical))
}
