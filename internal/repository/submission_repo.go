package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kodigo-go-api/internal/models"
)

// SubmissionRepository exposes persistence helpers for submissions. It is the
// only writer of submission rows.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Submission, int64, error)
	ListByChallenge(ctx context.Context, challengeID uint, limit, offset int) ([]models.Submission, int64, error)
	ListAllByUser(ctx context.Context, userID uint) ([]models.Submission, error)
	CountRecent(ctx context.Context, userID, challengeID uint, since time.Time) (int64, error)
	// BeginEvaluation transitions PENDING -> EVALUATING with a guarded update
	// and reports whether this caller won the transition. Grading is
	// single-flight per submission; a false return means another invocation
	// already claimed it (or it is already terminal).
	BeginEvaluation(ctx context.Context, id uint) (bool, error)
	// MarkReviewed applies the one-shot review overlay with a guarded update
	// on is_reviewed, reporting whether the flag was won.
	MarkReviewed(ctx context.Context, id uint, fields map[string]interface{}) (bool, error)
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Challenge").
		First(&submission, id).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Submission, int64, error) {
	return r.list(ctx, "user_id = ?", userID, limit, offset)
}

func (r *submissionRepository) ListByChallenge(ctx context.Context, challengeID uint, limit, offset int) ([]models.Submission, int64, error) {
	return r.list(ctx, "challenge_id = ?", challengeID, limit, offset)
}

func (r *submissionRepository) list(ctx context.Context, condition string, value uint, limit, offset int) ([]models.Submission, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Where(condition, value).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where(condition, value).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error
	if err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) ListAllByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) CountRecent(ctx context.Context, userID, challengeID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("user_id = ? AND challenge_id = ? AND created_at >= ?", userID, challengeID, since).
		Count(&count).Error
	return count, err
}

func (r *submissionRepository) BeginEvaluation(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, models.SubmissionStatusPending).
		Update("status", models.SubmissionStatusEvaluating)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *submissionRepository) MarkReviewed(ctx context.Context, id uint, fields map[string]interface{}) (bool, error) {
	fields["is_reviewed"] = true
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND is_reviewed = ?", id, false).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
