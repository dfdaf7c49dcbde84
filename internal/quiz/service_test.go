package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/brightsum/backend/internal/adaptive"
	"github.com/brightsum/backend/internal/models"
)

// ── In-memory fake store ────────────────────────────────

type userTopic struct{ user, topic int64 }

type fakeStore struct {
	topics    []models.Topic
	questions []models.Question
	params    map[int64]adaptive.ItemParams
	mastery   map[userTopic]float64
	attempts  map[int64]*models.QuizAttempt
	rosters   map[int64][]*models.QuizRosterItem
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		params:   make(map[int64]adaptive.ItemParams),
		mastery:  make(map[userTopic]float64),
		attempts: make(map[int64]*models.QuizAttempt),
		rosters:  make(map[int64][]*models.QuizRosterItem),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addTopic(slug, name string) models.Topic {
	t := models.Topic{ID: f.id(), Slug: slug, Name: name}
	f.topics = append(f.topics, t)
	return t
}

func (f *fakeStore) addQuestion(topicID int64, stem, answer string, d models.Difficulty) models.Question {
	q := models.Question{
		ID: f.id(), TopicID: topicID, Stem: stem, Answer: answer,
		BaseDifficulty: d, CreatedAt: time.Now(),
	}
	f.questions = append(f.questions, q)
	return q
}

func (f *fakeStore) GetTopicBySlug(slug string) (*models.Topic, error) {
	for _, t := range f.topics {
		if t.Slug == slug {
			topic := t
			return &topic, nil
		}
	}
	return nil, fmt.Errorf("topic %q: %w", slug, adaptive.ErrNotFound)
}

func (f *fakeStore) ListQuestions(topicID int64) ([]models.Question, error) {
	var out []models.Question
	for _, q := range f.questions {
		if q.TopicID == topicID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) ItemParams(topicID int64) (map[int64]adaptive.ItemParams, error) {
	out := make(map[int64]adaptive.ItemParams)
	for _, q := range f.questions {
		if q.TopicID != topicID {
			continue
		}
		if p, ok := f.params[q.ID]; ok {
			out[q.ID] = p
		}
	}
	return out, nil
}

func (f *fakeStore) GetMastery(userID, topicID int64) (float64, bool, error) {
	m, ok := f.mastery[userTopic{userID, topicID}]
	return m, ok, nil
}

func (f *fakeStore) GetAttempt(attemptID int64) (*models.QuizAttempt, error) {
	a, ok := f.attempts[attemptID]
	if !ok {
		return nil, fmt.Errorf("quiz attempt %d: %w", attemptID, adaptive.ErrNotFound)
	}
	copied := *a
	return &copied, nil
}

func (f *fakeStore) CreateAttempt(_ context.Context, userID, topicID int64, roster []RosterSlot) (*models.QuizAttempt, error) {
	a := &models.QuizAttempt{ID: f.id(), UserID: userID, TopicID: topicID, StartedAt: time.Now()}
	f.attempts[a.ID] = a
	for _, slot := range roster {
		f.rosters[a.ID] = append(f.rosters[a.ID], &models.QuizRosterItem{
			ID: f.id(), AttemptID: a.ID, QuestionID: slot.QuestionID,
			Position: slot.Position, InfoScore: slot.InfoScore,
		})
	}
	copied := *a
	return &copied, nil
}

func (f *fakeStore) GetRoster(attemptID int64) ([]models.QuizRosterItem, error) {
	var out []models.QuizRosterItem
	for _, item := range f.rosters[attemptID] {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeStore) GetQuestionsByIDs(ids []int64) (map[int64]models.Question, error) {
	out := make(map[int64]models.Question, len(ids))
	for _, id := range ids {
		found := false
		for _, q := range f.questions {
			if q.ID == id {
				out[id] = q
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("question %d: %w", id, adaptive.ErrNotFound)
		}
	}
	return out, nil
}

func (f *fakeStore) FinalizeSubmit(_ context.Context, r QuizResult) error {
	slots := make(map[int64]GradedSlot, len(r.Slots))
	for _, s := range r.Slots {
		slots[s.RosterID] = s
	}
	for _, item := range f.rosters[r.AttemptID] {
		if s, ok := slots[item.ID]; ok {
			correct := s.IsCorrect
			given := s.GivenAnswer
			item.IsCorrect = &correct
			item.GivenAnswer = &given
		}
	}

	a := f.attempts[r.AttemptID]
	now := time.Now()
	a.FinishedAt = &now
	pct := r.ScorePercent
	passed := r.Passed
	a.ScorePercent = &pct
	a.Passed = &passed

	f.mastery[userTopic{r.UserID, r.TopicID}] = r.NewMastery
	return nil
}

func (f *fakeStore) CountQuestions(topicID int64) (int, error) {
	n := 0
	for _, q := range f.questions {
		if q.TopicID == topicID {
			n++
		}
	}
	return n, nil
}

// ── Test helpers ────────────────────────────────────────

func newTestService(store Storage) *Service {
	return &Service{store: store, rng: rand.New(rand.NewSource(7))}
}

func seedTopic(f *fakeStore, n int) (models.Topic, []models.Question) {
	topic := f.addTopic("decimals", "Decimals")
	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		q := f.addQuestion(topic.ID, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), models.DifficultyMedium)
		questions = append(questions, q)
	}
	return topic, questions
}

func answersFor(questions map[int64]models.Question, roster []models.QuizQuestion, correctCount int) []models.QuizAnswer {
	answers := make([]models.QuizAnswer, 0, len(roster))
	for i, rq := range roster {
		given := "wrong"
		if i < correctCount {
			given = questions[rq.ID].Answer
		}
		answers = append(answers, models.QuizAnswer{QuestionID: rq.ID, AnswerSubmitted: given})
	}
	return answers
}

func questionsByID(questions []models.Question) map[int64]models.Question {
	out := make(map[int64]models.Question, len(questions))
	for _, q := range questions {
		out[q.ID] = q
	}
	return out
}

// ── Tests ───────────────────────────────────────────────

func TestStartDefaultRoster(t *testing.T) {
	f := newFakeStore()
	topic, _ := seedTopic(f, 25)
	svc := newTestService(f)

	resp, err := svc.Start(context.Background(), 1, topic.Slug, models.StartQuizRequest{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(resp.Questions) != DefaultNumQuestions {
		t.Errorf("roster size = %d, want %d", len(resp.Questions), DefaultNumQuestions)
	}
	if resp.TimeLimitMinutes != 25 {
		t.Errorf("time limit = %d, want 25", resp.TimeLimitMinutes)
	}
	if got := resp.ExpiresAt.Sub(resp.StartedAt); got != 25*time.Minute {
		t.Errorf("expiry window = %v, want 25m", got)
	}

	seen := make(map[int64]bool)
	for _, q := range resp.Questions {
		if seen[q.ID] {
			t.Errorf("question %d appears twice in roster", q.ID)
		}
		seen[q.ID] = true
	}

	roster, _ := f.GetRoster(resp.AttemptID)
	if len(roster) != DefaultNumQuestions {
		t.Fatalf("persisted roster size = %d, want %d", len(roster), DefaultNumQuestions)
	}
	for i, item := range roster {
		if item.Position != i+1 {
			t.Errorf("roster position = %d, want %d", item.Position, i+1)
		}
	}
}

func TestStartSmallPool(t *testing.T) {
	f := newFakeStore()
	topic, _ := seedTopic(f, 4)
	svc := newTestService(f)

	resp, err := svc.Start(context.Background(), 1, topic.Slug, models.StartQuizRequest{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(resp.Questions) != 4 {
		t.Errorf("roster size = %d, want the whole 4-item pool", len(resp.Questions))
	}
}

func TestStartEmptyTopic(t *testing.T) {
	f := newFakeStore()
	topic := f.addTopic("empty", "Empty")
	svc := newTestService(f)

	_, err := svc.Start(context.Background(), 1, topic.Slug, models.StartQuizRequest{})
	if !errors.Is(err, adaptive.ErrExhausted) {
		t.Errorf("expected ErrExhausted for an empty topic, got %v", err)
	}
}

func TestStartIRTStrategyRanksByInformation(t *testing.T) {
	f := newFakeStore()
	topic, questions := seedTopic(f, 5)
	// Give the first three questions fitted parameters with distinct slopes;
	// higher |w1| near p=0.5 means more information.
	f.params[questions[0].ID] = adaptive.ItemParams{W0: 0, W1: 1}
	f.params[questions[1].ID] = adaptive.ItemParams{W0: 0, W1: 3}
	f.params[questions[2].ID] = adaptive.ItemParams{W0: 0, W1: 2}
	f.mastery[userTopic{1, topic.ID}] = 0.0
	svc := newTestService(f)

	resp, err := svc.Start(context.Background(), 1, topic.Slug, models.StartQuizRequest{
		NumQuestions: 3,
		Strategy:     StrategyIRT,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(resp.Questions) != 3 {
		t.Fatalf("roster size = %d, want 3", len(resp.Questions))
	}
	// At mastery 0, w1=3 gives info 2.25, w1=2 gives 1.0, w1=1 gives 0.25.
	want := []int64{questions[1].ID, questions[2].ID, questions[0].ID}
	for i, q := range resp.Questions {
		if q.ID != want[i] {
			t.Errorf("roster[%d] = question %d, want %d", i, q.ID, want[i])
		}
	}

	roster, _ := f.GetRoster(resp.AttemptID)
	for i := 1; i < len(roster); i++ {
		if roster[i-1].InfoScore == nil || roster[i].InfoScore == nil {
			t.Fatal("IRT roster should persist information scores")
		}
		if *roster[i-1].InfoScore < *roster[i].InfoScore {
			t.Errorf("info scores not descending: %v then %v", *roster[i-1].InfoScore, *roster[i].InfoScore)
		}
	}
}

func TestSubmitPassBoundary(t *testing.T) {
	f := newFakeStore()
	topic, questions := seedTopic(f, 10)
	svc := newTestService(f)
	ctx := context.Background()

	start, err := svc.Start(ctx, 1, topic.Slug, models.StartQuizRequest{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := svc.Submit(ctx, 1, start.AttemptID, models.SubmitQuizRequest{
		Answers: answersFor(questionsByID(questions), start.Questions, 7),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Score != 7 || resp.TotalQuestions != 10 {
		t.Errorf("score = %d/%d, want 7/10", resp.Score, resp.TotalQuestions)
	}
	if math.Abs(resp.ScorePercent-70.0) > 1e-9 {
		t.Errorf("score percent = %v, want exactly 70.0", resp.ScorePercent)
	}
	if !resp.Passed {
		t.Error("70% is a pass, boundary inclusive")
	}
	if len(resp.Results) != 10 {
		t.Errorf("expected 10 per-question results, got %d", len(resp.Results))
	}
}

func TestSubmitFirstResultSetsInitialMastery(t *testing.T) {
	for _, tc := range []struct {
		name    string
		correct int
		want    float64
	}{
		{"pass", 8, 0.5},
		{"fail", 3, 0.2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeStore()
			topic, questions := seedTopic(f, 10)
			svc := newTestService(f)
			ctx := context.Background()

			start, err := svc.Start(ctx, 1, topic.Slug, models.StartQuizRequest{})
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			resp, err := svc.Submit(ctx, 1, start.AttemptID, models.SubmitQuizRequest{
				Answers: answersFor(questionsByID(questions), start.Questions, tc.correct),
			})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if math.Abs(resp.MasteryUpdated-tc.want) > 1e-9 {
				t.Errorf("first-quiz mastery = %v, want %v", resp.MasteryUpdated, tc.want)
			}
		})
	}
}

func TestSubmitNudgesExistingMastery(t *testing.T) {
	f := newFakeStore()
	topic, questions := seedTopic(f, 10)
	f.mastery[userTopic{1, topic.ID}] = 0.5
	svc := newTestService(f)
	ctx := context.Background()

	start, err := svc.Start(ctx, 1, topic.Slug, models.StartQuizRequest{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := svc.Submit(ctx, 1, start.AttemptID, models.SubmitQuizRequest{
		Answers: answersFor(questionsByID(questions), start.Questions, 10),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if math.Abs(resp.MasteryUpdated-0.56) > 1e-9 {
		t.Errorf("mastery after pass on 0.5 prior = %v, want 0.56", resp.MasteryUpdated)
	}
}

func TestSubmitIgnoresOffRosterAnswers(t *testing.T) {
	f := newFakeStore()
	topic, questions := seedTopic(f, 10)
	other := f.addQuestion(topic.ID+999, "stray", "x", models.DifficultyEasy)
	svc := newTestService(f)
	ctx := context.Background()

	start, err := svc.Start(ctx, 1, topic.Slug, models.StartQuizRequest{NumQuestions: 5})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	answers := answersFor(questionsByID(questions), start.Questions, 5)
	answers = append(answers, models.QuizAnswer{QuestionID: other.ID, AnswerSubmitted: "x"})

	resp, err := svc.Submit(ctx, 1, start.AttemptID, models.SubmitQuizRequest{Answers: answers})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.TotalQuestions != 5 {
		t.Errorf("graded %d questions, off-roster answer must not widen the roster", resp.TotalQuestions)
	}
	if resp.Score != 5 {
		t.Errorf("score = %d, want 5", resp.Score)
	}
}

func TestSubmitPastTimeLimit(t *testing.T) {
	f := newFakeStore()
	topic, questions := seedTopic(f, 10)
	svc := newTestService(f)
	ctx := context.Background()

	start, err := svc.Start(ctx, 1, topic.Slug, models.StartQuizRequest{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Backdate the attempt to 1501s ago against the 1500s window.
	f.attempts[start.AttemptID].StartedAt = time.Now().Add(-1501 * time.Second)

	_, err = svc.Submit(ctx, 1, start.AttemptID, models.SubmitQuizRequest{
		Answers: answersFor(questionsByID(questions), start.Questions, 10),
	})
	if !errors.Is(err, adaptive.ErrTimeExceeded) {
		t.Fatalf("expected ErrTimeExceeded, got %v", err)
	}

	// No grading happened and the attempt is still open.
	attempt, _ := f.GetAttempt(start.AttemptID)
	if attempt.FinishedAt != nil {
		t.Error("late submission must not complete the attempt")
	}
	roster, _ := f.GetRoster(start.AttemptID)
	for _, item := range roster {
		if item.IsCorrect != nil || item.GivenAnswer != nil {
			t.Error("late submission must not grade roster items")
		}
	}
	if _, ok := f.mastery[userTopic{1, topic.ID}]; ok {
		t.Error("late submission must not touch mastery")
	}
}

func TestSubmitTwice(t *testing.T) {
	f := newFakeStore()
	topic, questions := seedTopic(f, 10)
	svc := newTestService(f)
	ctx := context.Background()

	start, err := svc.Start(ctx, 1, topic.Slug, models.StartQuizRequest{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	req := models.SubmitQuizRequest{Answers: answersFor(questionsByID(questions), start.Questions, 10)}
	if _, err := svc.Submit(ctx, 1, start.AttemptID, req); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err = svc.Submit(ctx, 1, start.AttemptID, req)
	if !errors.Is(err, adaptive.ErrInvalidState) {
		t.Errorf("second submit: expected ErrInvalidState, got %v", err)
	}
}

func TestSubmitForeignAttempt(t *testing.T) {
	f := newFakeStore()
	topic, _ := seedTopic(f, 10)
	svc := newTestService(f)
	ctx := context.Background()

	start, err := svc.Start(ctx, 1, topic.Slug, models.StartQuizRequest{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = svc.Submit(ctx, 2, start.AttemptID, models.SubmitQuizRequest{})
	if !errors.Is(err, adaptive.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
