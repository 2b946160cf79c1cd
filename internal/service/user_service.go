package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kodigo-go-api/internal/dto"
	"github.com/noah-isme/kodigo-go-api/internal/gamification"
	"github.com/noah-isme/kodigo-go-api/internal/models"
	"github.com/noah-isme/kodigo-go-api/internal/repository"
)

// UserService owns user progression: XP credits, level-ups and the coin
// balance. Every coin movement also lands in the transaction ledger; a ledger
// write failure never rolls back the balance change, it is logged and the
// balance stands.
type UserService interface {
	Get(ctx context.Context, id uint) (models.User, error)
	Profile(ctx context.Context, id uint) (dto.ProfileResponse, error)
	Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
	// CreditXP grants experience and pays the level-up coin bonus for every
	// level reached. It returns the updated user and the levels gained.
	CreditXP(ctx context.Context, userID uint, amount int, referenceID, referenceType string) (models.User, []int, error)
	// CreditCoins increments the balance and records a ledger entry.
	CreditCoins(ctx context.Context, userID uint, amount int, txType, description, referenceID, referenceType string) (models.User, error)
	// SpendCoins decrements the balance, failing with ErrInsufficientCoins
	// when it does not cover the amount.
	SpendCoins(ctx context.Context, userID uint, amount int, description string) (models.User, error)
}

// NewUserService constructs a user service.
func NewUserService(users repository.UserRepository, transactions TransactionService, logger zerolog.Logger) UserService {
	return &userService{
		users:        users,
		transactions: transactions,
		logger:       logger.With().Str("component", "user_service").Logger(),
	}
}

type userService struct {
	users        repository.UserRepository
	transactions TransactionService
	logger       zerolog.Logger
}

func (s *userService) Get(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *userService) Profile(ctx context.Context, id uint) (dto.ProfileResponse, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(user), nil
}

func (s *userService) Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	users, err := s.users.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, dto.NewLeaderboardEntry(i+1, user))
	}
	return entries, nil
}

func (s *userService) CreditXP(ctx context.Context, userID uint, amount int, referenceID, referenceType string) (models.User, []int, error) {
	user, levelsGained, err := s.users.AddXP(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, nil, ErrUserNotFound
		}
		return models.User{}, nil, err
	}

	for _, level := range levelsGained {
		coins := gamification.CoinsForLevelUp(level)
		user, err = s.CreditCoins(ctx, userID, coins,
			models.TransactionTypeLevelUp,
			fmt.Sprintf("Reached level %d", level),
			referenceID, referenceType)
		if err != nil {
			s.logger.Error().Err(err).
				Uint("user_id", userID).
				Int("level", level).
				Msg("failed to pay level-up bonus")
			return user, levelsGained, err
		}
	}

	return user, levelsGained, nil
}

func (s *userService) CreditCoins(ctx context.Context, userID uint, amount int, txType, description, referenceID, referenceType string) (models.User, error) {
	user, err := s.users.AddCoins(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	s.record(ctx, models.Transaction{
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		Balance:       user.Coins,
		Description:   description,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
	})

	return user, nil
}

func (s *userService) SpendCoins(ctx context.Context, userID uint, amount int, description string) (models.User, error) {
	user, err := s.users.DeductCoins(ctx, userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance):
			return models.User{}, ErrInsufficientCoins
		case errors.Is(err, gorm.ErrRecordNotFound):
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	s.record(ctx, models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeSpend,
		Amount:      -amount,
		Balance:     user.Coins,
		Description: description,
	})

	return user, nil
}

func (s *userService) record(ctx context.Context, entry models.Transaction) {
	if err := s.transactions.Record(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Uint("user_id", entry.UserID).
			Str("type", entry.Type).
			Int("amount", entry.Amount).
			Msg("failed to record ledger entry")
	}
}
