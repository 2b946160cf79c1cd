package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/kodigo-go-api/internal/models"
	"github.com/noah-isme/kodigo-go-api/pkg/ai"
)

// SubmissionRequest represents the payload for creating a submission.
type SubmissionRequest struct {
	ChallengeID         uint   `json:"challenge_id" validate:"required,gt=0"`
	Code                string `json:"code" validate:"required,max=10240"`
	Explanation         string `json:"explanation" validate:"required,min=50,max=5000"`
	ExplanationLanguage string `json:"explanation_language" validate:"omitempty,max=64"`
}

// ReviewRequest represents the payload for the one-shot manual review.
type ReviewRequest struct {
	ExplanationScore int    `json:"explanation_score" validate:"min=0,max=100"`
	BonusXP          int    `json:"bonus_xp" validate:"min=0,max=500"`
	BonusCoins       int    `json:"bonus_coins" validate:"min=0,max=100"`
	Feedback         string `json:"feedback" validate:"omitempty,max=1000"`
}

// SubmissionResponse represents a submission to API consumers.
type SubmissionResponse struct {
	ID                  uint            `json:"id"`
	UserID              uint            `json:"user_id"`
	ChallengeID         uint            `json:"challenge_id"`
	Code                string          `json:"code,omitempty"`
	Explanation         string          `json:"explanation,omitempty"`
	ExplanationLanguage string          `json:"explanation_language,omitempty"`
	Status              string          `json:"status"`
	AIScore             *int            `json:"ai_score,omitempty"`
	AIAnalysis          *ai.Analysis    `json:"ai_analysis,omitempty"`
	AIFeedback          string          `json:"ai_feedback,omitempty"`
	AISuggestions       []string        `json:"ai_suggestions,omitempty"`
	TestResults         []ai.TestResult `json:"test_results,omitempty"`
	XPEarned            int             `json:"xp_earned"`
	CoinsEarned         int             `json:"coins_earned"`
	IsReviewed          bool            `json:"is_reviewed"`
	ExplanationScore    *int            `json:"explanation_score,omitempty"`
	BonusXP             int             `json:"bonus_xp,omitempty"`
	BonusCoins          int             `json:"bonus_coins,omitempty"`
	ReviewerFeedback    string          `json:"reviewer_feedback,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	EvaluatedAt         *time.Time      `json:"evaluated_at,omitempty"`
	ReviewedAt          *time.Time      `json:"reviewed_at,omitempty"`
}

// SubmissionStatsResponse aggregates a user's submission history.
type SubmissionStatsResponse struct {
	Total            int `json:"total"`
	Passed           int `json:"passed"`
	Failed           int `json:"failed"`
	Pending          int `json:"pending"`
	TotalXPEarned    int `json:"total_xp_earned"`
	TotalCoinsEarned int `json:"total_coins_earned"`
	AverageScore     int `json:"average_score"`
}

// NewSubmissionResponse builds a response DTO from a model. Code and
// explanation are included only for the owner and administrators.
func NewSubmissionResponse(submission models.Submission, includeCode bool) SubmissionResponse {
	response := SubmissionResponse{
		ID:                  submission.ID,
		UserID:              submission.UserID,
		ChallengeID:         submission.ChallengeID,
		ExplanationLanguage: submission.ExplanationLanguage,
		Status:              submission.Status,
		AIScore:             submission.AIScore,
		AIFeedback:          submission.AIFeedback,
		XPEarned:            submission.XPEarned,
		CoinsEarned:         submission.CoinsEarned,
		IsReviewed:          submission.IsReviewed,
		ExplanationScore:    submission.ExplanationScore,
		BonusXP:             submission.BonusXP,
		BonusCoins:          submission.BonusCoins,
		ReviewerFeedback:    submission.ReviewerFeedback,
		CreatedAt:           submission.CreatedAt,
		EvaluatedAt:         submission.EvaluatedAt,
		ReviewedAt:          submission.ReviewedAt,
	}

	if includeCode {
		response.Code = submission.Code
		response.Explanation = submission.Explanation
	}

	if submission.AICorrectness != nil {
		response.AIAnalysis = &ai.Analysis{
			Correctness: *submission.AICorrectness,
			CodeQuality: valueOrZero(submission.AICodeQuality),
			Efficiency:  valueOrZero(submission.AIEfficiency),
			Style:       valueOrZero(submission.AIStyle),
		}
	}

	if len(submission.AISuggestions) > 0 {
		var suggestions []string
		if err := json.Unmarshal(submission.AISuggestions, &suggestions); err == nil {
			response.AISuggestions = suggestions
		}
	}

	if len(submission.TestResults) > 0 {
		var results []ai.TestResult
		if err := json.Unmarshal(submission.TestResults, &results); err == nil {
			response.TestResults = results
		}
	}

	return response
}

func valueOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
