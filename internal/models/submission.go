package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus enumerates the grading states of a submission.
const (
	SubmissionStatusPending    = "PENDING"
	SubmissionStatusEvaluating = "EVALUATING"
	SubmissionStatusPassed     = "PASSED"
	SubmissionStatusFailed     = "FAILED"
	SubmissionStatusError      = "ERROR"
)

// Submission is one user's attempt at one challenge, including the AI grading
// outcome and the optional human review overlay.
type Submission struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	UserID              uint           `gorm:"not null;index:idx_submission_user_challenge" json:"user_id"`
	ChallengeID         uint           `gorm:"not null;index:idx_submission_user_challenge" json:"challenge_id"`
	Code                string         `gorm:"type:text;not null" json:"code"`
	Explanation         string         `gorm:"type:text;not null" json:"explanation"`
	ExplanationLanguage string         `gorm:"size:64" json:"explanation_language"`
	Status              string         `gorm:"size:32;not null;index" json:"status"`
	AIScore             *int           `json:"ai_score,omitempty"`
	AICorrectness       *int           `json:"ai_correctness,omitempty"`
	AICodeQuality       *int           `json:"ai_code_quality,omitempty"`
	AIEfficiency        *int           `json:"ai_efficiency,omitempty"`
	AIStyle             *int           `json:"ai_style,omitempty"`
	AIFeedback          string         `gorm:"type:text" json:"ai_feedback"`
	AISuggestions       datatypes.JSON `json:"ai_suggestions"`
	TestResults         datatypes.JSON `json:"test_results"`
	XPEarned            int            `gorm:"not null;default:0" json:"xp_earned"`
	CoinsEarned         int            `gorm:"not null;default:0" json:"coins_earned"`
	EvaluatedAt         *time.Time     `json:"evaluated_at,omitempty"`
	IsReviewed          bool           `gorm:"not null;default:false" json:"is_reviewed"`
	ReviewedBy          *uint          `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time     `json:"reviewed_at,omitempty"`
	ReviewerFeedback    string         `gorm:"type:text" json:"reviewer_feedback"`
	ExplanationScore    *int           `json:"explanation_score,omitempty"`
	BonusXP             int            `gorm:"not null;default:0" json:"bonus_xp"`
	BonusCoins          int            `gorm:"not null;default:0" json:"bonus_coins"`
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	User                User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Challenge           Challenge      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsTerminal reports whether the submission has finished grading.
func (s Submission) IsTerminal() bool {
	switch s.Status {
	case SubmissionStatusPassed, SubmissionStatusFailed, SubmissionStatusError:
		return true
	}
	return false
}
