package review

import (
	"github.com/brightsum/backend/internal/models"
)

const recentSessionLimit = 10

// Storage is the read-side surface the review screens need.
type Storage interface {
	GradedInteractions(userID int64, f SummaryFilter) ([]GradedRow, error)
	RecentSessions(userID int64, limit int) ([]models.RecentSession, error)
	Mistakes(userID int64, f MistakeFilter) ([]models.MistakeQuestion, int, error)
}

type Service struct {
	store Storage
}

func NewService(store Storage) *Service {
	return &Service{store: store}
}

func (s *Service) Summary(userID int64, f SummaryFilter) (*models.ReviewSummaryResponse, error) {
	graded, err := s.store.GradedInteractions(userID, f)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.RecentSessions(userID, recentSessionLimit)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.RecentSession{}
	}

	resp := aggregateSummary(graded)
	resp.RecentSessions = sessions
	return resp, nil
}

func (s *Service) Mistakes(userID int64, f MistakeFilter) (*models.MistakeListResponse, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.PageSize > 50 {
		f.PageSize = 50
	}

	mistakes, total, err := s.store.Mistakes(userID, f)
	if err != nil {
		return nil, err
	}
	if mistakes == nil {
		mistakes = []models.MistakeQuestion{}
	}
	return &models.MistakeListResponse{
		Mistakes: mistakes,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

// aggregateSummary folds graded interactions into the summary screen's
// headline numbers and per-topic breakdown.
func aggregateSummary(graded []GradedRow) *models.ReviewSummaryResponse {
	resp := &models.ReviewSummaryResponse{
		TypicalDifficulty: models.DifficultyEasy,
		Topics:            []models.TopicReview{},
	}

	type topicAgg struct {
		name            string
		answered, right int
		mistakes        int
	}
	topicOrder := []string{}
	topics := make(map[string]*topicAgg)
	difficulties := make(map[models.Difficulty]int)
	totalHints := 0

	for _, r := range graded {
		resp.TotalAnswered++
		if r.IsCorrect {
			resp.TotalCorrect++
		} else {
			resp.TotalIncorrect++
		}
		totalHints += r.HintsRequested
		difficulties[r.ShownDifficulty]++

		agg, ok := topics[r.TopicName]
		if !ok {
			agg = &topicAgg{name: r.TopicName}
			topics[r.TopicName] = agg
			topicOrder = append(topicOrder, r.TopicName)
		}
		agg.answered++
		if r.IsCorrect {
			agg.right++
		} else {
			agg.mistakes++
		}
	}

	if resp.TotalAnswered > 0 {
		accuracy := float64(resp.TotalCorrect) / float64(resp.TotalAnswered) * 100.0
		resp.OverallAccuracy = &accuracy
		resp.HintsPerQuestion = float64(totalHints) / float64(resp.TotalAnswered)
	}

	// Most frequently shown band, medium then hard winning ties, so a brand
	// new learner reads as easy.
	best := 0
	for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		if difficulties[d] >= best && difficulties[d] > 0 {
			best = difficulties[d]
			resp.TypicalDifficulty = d
		}
	}

	for _, name := range topicOrder {
		agg := topics[name]
		review := models.TopicReview{Name: agg.name, Mistakes: agg.mistakes}
		if agg.answered > 0 {
			pct := int(float64(agg.right) / float64(agg.answered) * 100.0)
			review.Accuracy = &pct
		}
		resp.Topics = append(resp.Topics, review)
	}
	return resp
}
