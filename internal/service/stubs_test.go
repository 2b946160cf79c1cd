package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kodigo-go-api/internal/dto"
	"github.com/noah-isme/kodigo-go-api/internal/models"
	"github.com/noah-isme/kodigo-go-api/pkg/ai"
)

// stubSubmissionRepo is an in-memory SubmissionRepository for service tests.
type stubSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uint]models.Submission
	nextID      uint
	createErr   error
	updateErr   error
}

func newStubSubmissionRepo() *stubSubmissionRepo {
	return &stubSubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1}
}

func (r *stubSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	submission.ID = r.nextID
	submission.CreatedAt = time.Now()
	r.nextID++
	r.submissions[submission.ID] = *submission
	return nil
}

func (r *stubSubmissionRepo) Update(_ context.Context, submission *models.Submission) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[submission.ID] = *submission
	return nil
}

func (r *stubSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (r *stubSubmissionRepo) ListByUser(_ context.Context, userID uint, _, _ int) ([]models.Submission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Submission
	for _, submission := range r.submissions {
		if submission.UserID == userID {
			out = append(out, submission)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSubmissionRepo) ListByChallenge(_ context.Context, challengeID uint, _, _ int) ([]models.Submission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Submission
	for _, submission := range r.submissions {
		if submission.ChallengeID == challengeID {
			out = append(out, submission)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSubmissionRepo) ListAllByUser(_ context.Context, userID uint) ([]models.Submission, error) {
	list, _, err := r.ListByUser(context.Background(), userID, 0, 0)
	return list, err
}

func (r *stubSubmissionRepo) CountRecent(_ context.Context, userID, challengeID uint, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, submission := range r.submissions {
		if submission.UserID == userID && submission.ChallengeID == challengeID && !submission.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *stubSubmissionRepo) BeginEvaluation(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.submissions[id]
	if !ok || submission.Status != models.SubmissionStatusPending {
		return false, nil
	}
	submission.Status = models.SubmissionStatusEvaluating
	r.submissions[id] = submission
	return true, nil
}

func (r *stubSubmissionRepo) MarkReviewed(_ context.Context, id uint, fields map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.submissions[id]
	if !ok || submission.IsReviewed {
		return false, nil
	}
	submission.IsReviewed = true
	if v, ok := fields["reviewed_by"].(uint); ok {
		submission.ReviewedBy = &v
	}
	if v, ok := fields["reviewed_at"].(time.Time); ok {
		submission.ReviewedAt = &v
	}
	if v, ok := fields["reviewer_feedback"].(string); ok {
		submission.ReviewerFeedback = v
	}
	if v, ok := fields["explanation_score"].(int); ok {
		submission.ExplanationScore = &v
	}
	if v, ok := fields["bonus_xp"].(int); ok {
		submission.BonusXP = v
	}
	if v, ok := fields["bonus_coins"].(int); ok {
		submission.BonusCoins = v
	}
	r.submissions[id] = submission
	return true, nil
}

// stubChallengeRepo serves a fixed challenge set.
type stubChallengeRepo struct {
	challenges map[uint]models.Challenge
}

func (r *stubChallengeRepo) GetByID(_ context.Context, id uint) (models.Challenge, error) {
	challenge, ok := r.challenges[id]
	if !ok {
		return models.Challenge{}, gorm.ErrRecordNotFound
	}
	return challenge, nil
}

func (r *stubChallengeRepo) FindActiveByWeek(_ context.Context, weekNumber, year int) ([]models.Challenge, error) {
	var out []models.Challenge
	for _, challenge := range r.challenges {
		if challenge.WeekNumber == weekNumber && challenge.Year == year && challenge.IsActive {
			out = append(out, challenge)
		}
	}
	return out, nil
}

// stubUserService records reward credits without touching storage.
type stubUserService struct {
	mu           sync.Mutex
	xpCredits    []int
	coinCredits  []int
	coinTypes    []string
	creditXPErr  error
	creditXPFail int
}

func (s *stubUserService) Get(context.Context, uint) (models.User, error) {
	return models.User{}, nil
}

func (s *stubUserService) Profile(context.Context, uint) (dto.ProfileResponse, error) {
	return dto.ProfileResponse{}, nil
}

func (s *stubUserService) Leaderboard(context.Context, int) ([]dto.LeaderboardEntry, error) {
	return nil, nil
}

func (s *stubUserService) CreditXP(_ context.Context, _ uint, amount int, _, _ string) (models.User, []int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creditXPFail > 0 {
		s.creditXPFail--
		return models.User{}, nil, s.creditXPErr
	}
	s.xpCredits = append(s.xpCredits, amount)
	return models.User{}, nil, nil
}

func (s *stubUserService) CreditCoins(_ context.Context, _ uint, amount int, txType, _, _, _ string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coinCredits = append(s.coinCredits, amount)
	s.coinTypes = append(s.coinTypes, txType)
	return models.User{}, nil
}

func (s *stubUserService) SpendCoins(context.Context, uint, int, string) (models.User, error) {
	return models.User{}, nil
}

// stubEvaluator returns a canned grading result.
type stubEvaluator struct {
	result ai.GradingResult
	err    error
	inputs []ai.EvaluationInput
}

func (e *stubEvaluator) Evaluate(_ context.Context, input ai.EvaluationInput) (ai.GradingResult, error) {
	e.inputs = append(e.inputs, input)
	return e.result, e.err
}

// stubLimiter admits everything unless primed with an error.
type stubLimiter struct {
	err   error
	calls int
}

func (l *stubLimiter) Allow(context.Context, uint, uint) error {
	l.calls++
	return l.err
}

// stubQueue records enqueued submission IDs.
type stubQueue struct {
	mu      sync.Mutex
	ids     []uint
	err     error
	started bool
}

func (q *stubQueue) Enqueue(_ context.Context, submissionID uint) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, submissionID)
	return nil
}

func (q *stubQueue) Start(context.Context, func(context.Context, uint)) error {
	q.started = true
	return nil
}

func (q *stubQueue) Close() {}
