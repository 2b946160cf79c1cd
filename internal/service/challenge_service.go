package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kodigo-go-api/internal/dto"
	"github.com/noah-isme/kodigo-go-api/internal/repository"
)

// ChallengeService exposes the read surface over weekly challenges.
type ChallengeService interface {
	Get(ctx context.Context, id uint) (dto.ChallengeResponse, error)
	// CurrentWeek lists the active challenges for the current ISO week in the
	// configured timezone.
	CurrentWeek(ctx context.Context) ([]dto.ChallengeResponse, error)
}

// NewChallengeService constructs a challenge service.
func NewChallengeService(challenges repository.ChallengeRepository, location *time.Location, logger zerolog.Logger) ChallengeService {
	if location == nil {
		location = time.UTC
	}
	return &challengeService{
		challenges: challenges,
		location:   location,
		logger:     logger.With().Str("component", "challenge_service").Logger(),
	}
}

type challengeService struct {
	challenges repository.ChallengeRepository
	location   *time.Location
	logger     zerolog.Logger
}

func (s *challengeService) Get(ctx context.Context, id uint) (dto.ChallengeResponse, error) {
	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}
	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) CurrentWeek(ctx context.Context) ([]dto.ChallengeResponse, error) {
	year, week := time.Now().In(s.location).ISOWeek()

	challenges, err := s.challenges.FindActiveByWeek(ctx, week, year)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		responses = append(responses, dto.NewChallengeResponse(challenge))
	}
	return responses, nil
}
