package dto

import (
	"time"

	"github.com/noah-isme/kodigo-go-api/internal/models"
)

// ChallengeResponse is the student-facing view of a challenge. The evaluation
// prompt stays server-side.
type ChallengeResponse struct {
	ID               uint              `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	ProblemStatement string            `json:"problem_statement"`
	StarterCode      string            `json:"starter_code,omitempty"`
	TestCases        []models.TestCase `json:"test_cases"`
	Difficulty       int               `json:"difficulty"`
	BaseXPReward     int               `json:"base_xp_reward"`
	BonusCoins       int               `json:"bonus_coins"`
	WeekNumber       int               `json:"week_number"`
	Year             int               `json:"year"`
	IsActive         bool              `json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
}

// NewChallengeResponse converts a challenge model into its public DTO.
func NewChallengeResponse(challenge models.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:               challenge.ID,
		Title:            challenge.Title,
		Description:      challenge.Description,
		ProblemStatement: challenge.ProblemStatement,
		StarterCode:      challenge.StarterCode,
		TestCases:        challenge.DecodedTestCases(),
		Difficulty:       challenge.Difficulty,
		BaseXPReward:     challenge.BaseXPReward,
		BonusCoins:       challenge.BonusCoins,
		WeekNumber:       challenge.WeekNumber,
		Year:             challenge.Year,
		IsActive:         challenge.IsActive,
		CreatedAt:        challenge.CreatedAt,
	}
}
