package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// TestCase is a single input/expected-output pair attached to a challenge.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Challenge is a weekly problem definition students submit code against.
type Challenge struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	ProblemStatement string         `gorm:"type:text;not null" json:"problem_statement"`
	StarterCode      string         `gorm:"type:text" json:"starter_code"`
	TestCases        datatypes.JSON `json:"test_cases"`
	EvaluationPrompt string         `gorm:"type:text;not null" json:"evaluation_prompt"`
	Difficulty       int            `gorm:"not null;default:1" json:"difficulty"`
	BaseXPReward     int            `gorm:"not null;default:100" json:"base_xp_reward"`
	BonusCoins       int            `gorm:"not null;default:10" json:"bonus_coins"`
	WeekNumber       int            `gorm:"not null;index:idx_challenge_week" json:"week_number"`
	Year             int            `gorm:"not null;index:idx_challenge_week" json:"year"`
	IsActive         bool           `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// DecodedTestCases unmarshals the stored test case list. An empty or invalid
// column yields an empty slice rather than an error.
func (c Challenge) DecodedTestCases() []TestCase {
	if len(c.TestCases) == 0 {
		return nil
	}
	var cases []TestCase
	if err := json.Unmarshal(c.TestCases, &cases); err != nil {
		return nil
	}
	return cases
}
