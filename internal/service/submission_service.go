package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/kodigo-go-api/internal/dto"
	"github.com/noah-isme/kodigo-go-api/internal/gamification"
	"github.com/noah-isme/kodigo-go-api/internal/models"
	"github.com/noah-isme/kodigo-go-api/internal/repository"
	"github.com/noah-isme/kodigo-go-api/pkg/ai"
	"github.com/noah-isme/kodigo-go-api/pkg/codeguard"
)

var (
	submissionsGradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kodigo_submissions_graded_total",
		Help: "Graded submissions by terminal status.",
	}, []string{"status"})

	submissionsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kodigo_submissions_rejected_total",
		Help: "Submissions rejected by the code guard.",
	})
)

// SubmissionService drives the submission lifecycle: intake, asynchronous AI
// grading, reward payout and the one-shot manual review overlay.
type SubmissionService interface {
	Submit(ctx context.Context, userID uint, req dto.SubmissionRequest) (dto.SubmissionResponse, error)
	// Evaluate grades one submission. It is single-flight: concurrent calls
	// for the same submission resolve to exactly one grading run, the losers
	// get ErrAlreadyEvaluated.
	Evaluate(ctx context.Context, submissionID uint) error
	Review(ctx context.Context, submissionID, reviewerID uint, req dto.ReviewRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, submissionID, requesterID uint, isAdmin bool) (dto.SubmissionResponse, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]dto.SubmissionResponse, int64, error)
	ListByChallenge(ctx context.Context, challengeID uint, limit, offset int) ([]dto.SubmissionResponse, int64, error)
	Stats(ctx context.Context, userID uint) (dto.SubmissionStatsResponse, error)
}

// SubmissionServiceParams collects the collaborators of the lifecycle.
type SubmissionServiceParams struct {
	Submissions repository.SubmissionRepository
	Challenges  repository.ChallengeRepository
	Users       UserService
	Evaluator   ai.Evaluator
	Policy      gamification.RewardPolicy
	Limiter     SubmissionLimiter
	Queue       GradingQueue
	// WeekendOnly restricts intake to Saturday and Sunday in Location.
	WeekendOnly bool
	Location    *time.Location
	// EvaluationTimeout bounds one AI grading call.
	EvaluationTimeout time.Duration
	Logger            zerolog.Logger
}

// NewSubmissionService constructs the submission lifecycle service.
func NewSubmissionService(params SubmissionServiceParams) SubmissionService {
	if params.Location == nil {
		params.Location = time.UTC
	}
	if params.EvaluationTimeout <= 0 {
		params.EvaluationTimeout = 60 * time.Second
	}
	if params.Policy == nil {
		params.Policy = gamification.ScoreWeightedPolicy{}
	}

	return &submissionService{
		params:    params,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
		logger:    params.Logger.With().Str("component", "submission_service").Logger(),
	}
}

type submissionService struct {
	params    SubmissionServiceParams
	sanitizer *bluemonday.Policy
	now       func() time.Time
	logger    zerolog.Logger
}

func (s *submissionService) Submit(ctx context.Context, userID uint, req dto.SubmissionRequest) (dto.SubmissionResponse, error) {
	if s.params.WeekendOnly {
		switch s.now().In(s.params.Location).Weekday() {
		case time.Saturday, time.Sunday:
		default:
			return dto.SubmissionResponse{}, ErrWeekendOnly
		}
	}

	challenge, err := s.params.Challenges.GetByID(ctx, req.ChallengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrChallengeNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !challenge.IsActive {
		return dto.SubmissionResponse{}, ErrChallengeInactive
	}

	if result := codeguard.Validate(req.Code); !result.OK {
		submissionsRejectedTotal.Inc()
		return dto.SubmissionResponse{}, &CodeRejectedError{Violations: result.Violations}
	}

	if err := s.params.Limiter.Allow(ctx, userID, challenge.ID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		UserID:              userID,
		ChallengeID:         challenge.ID,
		Code:                codeguard.Sanitize(req.Code),
		Explanation:         s.sanitizer.Sanitize(req.Explanation),
		ExplanationLanguage: req.ExplanationLanguage,
		Status:              models.SubmissionStatusPending,
	}
	if err := s.params.Submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.params.Queue.Enqueue(ctx, submission.ID); err != nil {
		// The submission stays PENDING; an administrator can re-trigger
		// grading through the evaluate endpoint.
		s.logger.Error().Err(err).
			Uint("submission_id", submission.ID).
			Msg("failed to enqueue submission for grading")
	}

	return dto.NewSubmissionResponse(submission, true), nil
}

func (s *submissionService) Evaluate(ctx context.Context, submissionID uint) error {
	ctx, span := otel.Tracer("kodigo.submission").Start(ctx, "submission.evaluate")
	defer span.End()
	span.SetAttributes(attribute.Int64("submission.id", int64(submissionID)))

	submission, err := s.params.Submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	won, err := s.params.Submissions.BeginEvaluation(ctx, submissionID)
	if err != nil {
		return err
	}
	if !won {
		return ErrAlreadyEvaluated
	}
	submission.Status = models.SubmissionStatusEvaluating

	input := ai.EvaluationInput{
		Code:             submission.Code,
		ProblemStatement: submission.Challenge.ProblemStatement,
		EvaluationPrompt: submission.Challenge.EvaluationPrompt,
		TestCases:        evaluationTestCases(submission.Challenge),
	}

	evalCtx, cancel := context.WithTimeout(ctx, s.params.EvaluationTimeout)
	result, evalErr := s.params.Evaluator.Evaluate(evalCtx, input)
	cancel()

	now := s.now()
	submission.EvaluatedAt = &now
	applyGradingResult(&submission, result)

	if evalErr != nil {
		submission.Status = models.SubmissionStatusError
	} else if result.Passed {
		submission.Status = models.SubmissionStatusPassed
		s.payRewards(ctx, &submission, result.Score)
	} else {
		submission.Status = models.SubmissionStatusFailed
	}

	if err := s.params.Submissions.Update(ctx, &submission); err != nil {
		return err
	}
	submissionsGradedTotal.WithLabelValues(submission.Status).Inc()
	span.SetAttributes(
		attribute.String("submission.status", submission.Status),
		attribute.Int("submission.score", result.Score),
	)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("status", submission.Status).
		Int("score", result.Score).
		Msg("submission graded")

	if evalErr != nil {
		return fmt.Errorf("evaluate submission %d: %w", submissionID, evalErr)
	}
	return nil
}

// payRewards credits the challenge payout. Each credit retries once; a credit
// that still fails is logged and the grade stands, reconciliation is manual
// via the ledger.
func (s *submissionService) payRewards(ctx context.Context, submission *models.Submission, score int) {
	reward := s.params.Policy.Rewards(submission.Challenge, score)
	referenceID := strconv.FormatUint(uint64(submission.ID), 10)

	err := withOneRetry(func() error {
		_, _, err := s.params.Users.CreditXP(ctx, submission.UserID, reward.XP, referenceID, "submission")
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).
			Uint("submission_id", submission.ID).
			Int("xp", reward.XP).
			Msg("failed to credit challenge XP")
	} else {
		submission.XPEarned = reward.XP
	}

	if reward.Coins > 0 {
		description := fmt.Sprintf("Completed challenge: %s", submission.Challenge.Title)
		err := withOneRetry(func() error {
			_, err := s.params.Users.CreditCoins(ctx, submission.UserID, reward.Coins,
				models.TransactionTypeChallengeReward, description, referenceID, "submission")
			return err
		})
		if err != nil {
			s.logger.Error().Err(err).
				Uint("submission_id", submission.ID).
				Int("coins", reward.Coins).
				Msg("failed to credit challenge coins")
		} else {
			submission.CoinsEarned = reward.Coins
		}
	}
}

func (s *submissionService) Review(ctx context.Context, submissionID, reviewerID uint, req dto.ReviewRequest) (dto.SubmissionResponse, error) {
	submission, err := s.params.Submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !submission.IsTerminal() {
		return dto.SubmissionResponse{}, ErrNotEvaluated
	}

	now := s.now()
	fields := map[string]interface{}{
		"reviewed_by":       reviewerID,
		"reviewed_at":       now,
		"reviewer_feedback": s.sanitizer.Sanitize(req.Feedback),
		"explanation_score": req.ExplanationScore,
		"bonus_xp":          req.BonusXP,
		"bonus_coins":       req.BonusCoins,
	}

	won, err := s.params.Submissions.MarkReviewed(ctx, submissionID, fields)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !won {
		return dto.SubmissionResponse{}, ErrAlreadyReviewed
	}

	referenceID := strconv.FormatUint(uint64(submissionID), 10)
	if req.BonusXP > 0 {
		if _, _, err := s.params.Users.CreditXP(ctx, submission.UserID, req.BonusXP, referenceID, "review"); err != nil {
			s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to credit review bonus XP")
		}
	}
	if req.BonusCoins > 0 {
		if _, err := s.params.Users.CreditCoins(ctx, submission.UserID, req.BonusCoins,
			models.TransactionTypeReviewBonus, "Manual review bonus", referenceID, "review"); err != nil {
			s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to credit review bonus coins")
		}
	}

	updated, err := s.params.Submissions.GetByID(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(updated, true), nil
}

func (s *submissionService) Get(ctx context.Context, submissionID, requesterID uint, isAdmin bool) (dto.SubmissionResponse, error) {
	submission, err := s.params.Submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.UserID != requesterID && !isAdmin {
		return dto.SubmissionResponse{}, ErrSubmissionForbidden
	}

	return dto.NewSubmissionResponse(submission, true), nil
}

func (s *submissionService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]dto.SubmissionResponse, int64, error) {
	submissions, total, err := s.params.Submissions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return submissionResponses(submissions, false), total, nil
}

func (s *submissionService) ListByChallenge(ctx context.Context, challengeID uint, limit, offset int) ([]dto.SubmissionResponse, int64, error) {
	submissions, total, err := s.params.Submissions.ListByChallenge(ctx, challengeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return submissionResponses(submissions, false), total, nil
}

func (s *submissionService) Stats(ctx context.Context, userID uint) (dto.SubmissionStatsResponse, error) {
	submissions, err := s.params.Submissions.ListAllByUser(ctx, userID)
	if err != nil {
		return dto.SubmissionStatsResponse{}, err
	}

	stats := dto.SubmissionStatsResponse{Total: len(submissions)}
	scored := 0
	scoreSum := 0
	for _, submission := range submissions {
		switch submission.Status {
		case models.SubmissionStatusPassed:
			stats.Passed++
		case models.SubmissionStatusFailed:
			stats.Failed++
		case models.SubmissionStatusPending, models.SubmissionStatusEvaluating:
			stats.Pending++
		}
		stats.TotalXPEarned += submission.XPEarned + submission.BonusXP
		stats.TotalCoinsEarned += submission.CoinsEarned + submission.BonusCoins
		if submission.AIScore != nil {
			scored++
			scoreSum += *submission.AIScore
		}
	}
	if scored > 0 {
		stats.AverageScore = scoreSum / scored
	}
	return stats, nil
}

func submissionResponses(submissions []models.Submission, includeCode bool) []dto.SubmissionResponse {
	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission, includeCode))
	}
	return responses
}

func evaluationTestCases(challenge models.Challenge) []ai.TestCase {
	decoded := challenge.DecodedTestCases()
	cases := make([]ai.TestCase, 0, len(decoded))
	for _, testCase := range decoded {
		cases = append(cases, ai.TestCase{
			Input:          testCase.Input,
			ExpectedOutput: testCase.ExpectedOutput,
		})
	}
	return cases
}

// applyGradingResult copies the grading outcome onto the submission row.
// Degraded results still land, so a student always sees some feedback.
func applyGradingResult(submission *models.Submission, result ai.GradingResult) {
	score := result.Score
	correctness := result.Analysis.Correctness
	quality := result.Analysis.CodeQuality
	efficiency := result.Analysis.Efficiency
	style := result.Analysis.Style

	submission.AIScore = &score
	submission.AICorrectness = &correctness
	submission.AICodeQuality = &quality
	submission.AIEfficiency = &efficiency
	submission.AIStyle = &style
	submission.AIFeedback = result.Feedback

	if suggestions, err := json.Marshal(result.Suggestions); err == nil {
		submission.AISuggestions = datatypes.JSON(suggestions)
	}
	if testResults, err := json.Marshal(result.TestResults); err == nil {
		submission.TestResults = datatypes.JSON(testResults)
	}
}

func withOneRetry(fn func() error) error {
	if err := fn(); err != nil {
		return fn()
	}
	return nil
}
