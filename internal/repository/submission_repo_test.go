package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/kodigo-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Challenge{}, &models.Submission{}, &models.Transaction{}))
	return db
}

func seedSubmission(t *testing.T, db *gorm.DB, status string) models.Submission {
	t.Helper()

	user := models.User{DisplayName: "Ana", Email: "ana@example.com", Level: 1}
	require.NoError(t, db.Create(&user).Error)

	challenge := models.Challenge{Title: "FizzBuzz", ProblemStatement: "...", EvaluationPrompt: "...", Difficulty: 1, WeekNumber: 30, Year: 2026, IsActive: true}
	require.NoError(t, db.Create(&challenge).Error)

	submission := models.Submission{
		UserID:      user.ID,
		ChallengeID: challenge.ID,
		Code:        "print('fizz')",
		Explanation: "Aking ginamit ang modulo operator para malaman ang divisibility ng bawat numero.",
		Status:      status,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func TestBeginEvaluationIsSingleFlight(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	submission := seedSubmission(t, db, models.SubmissionStatusPending)

	won, err := repo.BeginEvaluation(context.Background(), submission.ID)
	require.NoError(t, err)
	require.True(t, won)

	// Second claim loses; the row is no longer PENDING.
	won, err = repo.BeginEvaluation(context.Background(), submission.ID)
	require.NoError(t, err)
	require.False(t, won)

	stored, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusEvaluating, stored.Status)
}

func TestBeginEvaluationRejectsTerminalStatuses(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	for _, status := range []string{models.SubmissionStatusPassed, models.SubmissionStatusFailed, models.SubmissionStatusError} {
		submission := seedSubmission(t, db, status)
		won, err := repo.BeginEvaluation(context.Background(), submission.ID)
		require.NoError(t, err)
		require.False(t, won, "status %s must not be claimable", status)
	}
}

func TestMarkReviewedIsOneShot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	submission := seedSubmission(t, db, models.SubmissionStatusPassed)

	now := time.Now()
	won, err := repo.MarkReviewed(context.Background(), submission.ID, map[string]interface{}{
		"reviewed_by":       uint(9),
		"reviewed_at":       now,
		"explanation_score": 88,
		"bonus_xp":          50,
		"bonus_coins":       10,
		"reviewer_feedback": "Maayos ang paliwanag.",
	})
	require.NoError(t, err)
	require.True(t, won)

	won, err = repo.MarkReviewed(context.Background(), submission.ID, map[string]interface{}{"bonus_xp": 500})
	require.NoError(t, err)
	require.False(t, won)

	stored, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.True(t, stored.IsReviewed)
	require.Equal(t, 50, stored.BonusXP)
	require.NotNil(t, stored.ExplanationScore)
	require.Equal(t, 88, *stored.ExplanationScore)
}

func TestCountRecentHonoursWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	submission := seedSubmission(t, db, models.SubmissionStatusPending)

	old := models.Submission{
		UserID:      submission.UserID,
		ChallengeID: submission.ChallengeID,
		Code:        "print('old')",
		Explanation: "Ito ang una kong sagot noong nakaraang linggo, gamit ang parehong lohika.",
		Status:      models.SubmissionStatusFailed,
	}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&old).Update("created_at", time.Now().Add(-2*time.Hour)).Error)

	count, err := repo.CountRecent(context.Background(), submission.UserID, submission.ChallengeID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestListByUserPaginatesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	first := seedSubmission(t, db, models.SubmissionStatusPassed)
	require.NoError(t, db.Model(&models.Submission{ID: first.ID}).Update("created_at", time.Now().Add(-time.Hour)).Error)

	second := models.Submission{
		UserID:      first.UserID,
		ChallengeID: first.ChallengeID,
		Code:        "print('again')",
		Explanation: "Pinabuti ko ang aking solusyon sa pamamagitan ng paggamit ng mas simpleng loop.",
		Status:      models.SubmissionStatusPending,
	}
	require.NoError(t, db.Create(&second).Error)

	submissions, total, err := repo.ListByUser(context.Background(), first.UserID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, submissions, 2)
	require.Equal(t, second.ID, submissions[0].ID)
}
