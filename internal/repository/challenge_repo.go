package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kodigo-go-api/internal/models"
)

// ChallengeRepository exposes the read surface over challenges. The grading
// core never mutates challenge records.
type ChallengeRepository interface {
	GetByID(ctx context.Context, id uint) (models.Challenge, error)
	FindActiveByWeek(ctx context.Context, weekNumber, year int) ([]models.Challenge, error)
}

// NewChallengeRepository constructs a challenge repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

type challengeRepository struct {
	db *gorm.DB
}

func (r *challengeRepository) GetByID(ctx context.Context, id uint) (models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return models.Challenge{}, err
	}
	return challenge, nil
}

func (r *challengeRepository) FindActiveByWeek(ctx context.Context, weekNumber, year int) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("week_number = ? AND year = ? AND is_active = ?", weekNumber, year, true).
		Order("created_at DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}
