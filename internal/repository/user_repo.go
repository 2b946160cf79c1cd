package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kodigo-go-api/internal/gamification"
	"github.com/noah-isme/kodigo-go-api/internal/models"
)

// ErrInsufficientBalance indicates a coin deduction larger than the balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// UserRepository exposes persistence helpers for user progression state.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	// AddXP credits experience and applies level-ups inside a per-user
	// row-lock transaction, so concurrent grading completions cannot corrupt
	// the level counter. It returns the updated user and every level reached.
	AddXP(ctx context.Context, id uint, amount int) (models.User, []int, error)
	// AddCoins atomically increments the coin balance and returns the
	// resulting balance.
	AddCoins(ctx context.Context, id uint, amount int) (models.User, error)
	// DeductCoins atomically decrements the balance, failing with
	// ErrInsufficientBalance when the balance does not cover the amount.
	DeductCoins(ctx context.Context, id uint, amount int) (models.User, error)
	Leaderboard(ctx context.Context, limit int) ([]models.User, error)
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) AddXP(ctx context.Context, id uint, amount int) (models.User, []int, error) {
	var user models.User
	var levelsGained []int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return err
		}

		newXP, newLevel, gained := gamification.AddXP(user.XP, user.Level, amount)
		user.XP = newXP
		user.Level = newLevel
		levelsGained = gained

		return tx.Model(&user).Updates(map[string]interface{}{"xp": newXP, "level": newLevel}).Error
	})
	if err != nil {
		return models.User{}, nil, err
	}

	return user, levelsGained, nil
}

func (r *userRepository) AddCoins(ctx context.Context, id uint, amount int) (models.User, error) {
	return r.adjustCoins(ctx, id, amount)
}

func (r *userRepository) DeductCoins(ctx context.Context, id uint, amount int) (models.User, error) {
	return r.adjustCoins(ctx, id, -amount)
}

func (r *userRepository) adjustCoins(ctx context.Context, id uint, delta int) (models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return err
		}

		if user.Coins+delta < 0 {
			return ErrInsufficientBalance
		}

		user.Coins += delta
		return tx.Model(&user).Update("coins", user.Coins).Error
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 10
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Order("level DESC").
		Order("xp DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
