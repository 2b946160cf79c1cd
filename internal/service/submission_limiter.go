package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodigo-go-api/internal/repository"
)

// ErrRateLimited indicates the per-user, per-challenge submission window is
// exhausted.
var ErrRateLimited = errors.New("submission rate limit exceeded")

// SubmissionLimiter enforces the rolling-window admission policy: at most
// Limit submissions per user per challenge per Window.
type SubmissionLimiter interface {
	Allow(ctx context.Context, userID, challengeID uint) error
}

// NewSubmissionLimiter builds the admission guard. With a Redis client the
// check is an atomic INCR+TTL counter, safe against concurrent submissions
// from the same user. Without Redis it falls back to counting recent rows,
// which is best effort under heavy contention.
func NewSubmissionLimiter(redisClient *redis.Client, submissions repository.SubmissionRepository, limit int, window time.Duration, logger zerolog.Logger) SubmissionLimiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Hour
	}

	return &submissionLimiter{
		redis:       redisClient,
		submissions: submissions,
		limit:       limit,
		window:      window,
		logger:      logger.With().Str("component", "submission_limiter").Logger(),
	}
}

type submissionLimiter struct {
	redis       *redis.Client
	submissions repository.SubmissionRepository
	limit       int
	window      time.Duration
	logger      zerolog.Logger
}

func (l *submissionLimiter) Allow(ctx context.Context, userID, challengeID uint) error {
	if l.redis != nil {
		return l.allowRedis(ctx, userID, challengeID)
	}
	return l.allowDatabase(ctx, userID, challengeID)
}

func (l *submissionLimiter) allowRedis(ctx context.Context, userID, challengeID uint) error {
	key := fmt.Sprintf("kodigo:submission_rate:%d:%d", userID, challengeID)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn().Err(err).Msg("rate limit counter unavailable, falling back to database")
		return l.allowDatabase(ctx, userID, challengeID)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to set rate limit window")
		}
	}

	if count > int64(l.limit) {
		return ErrRateLimited
	}

	return nil
}

func (l *submissionLimiter) allowDatabase(ctx context.Context, userID, challengeID uint) error {
	since := time.Now().Add(-l.window)
	count, err := l.submissions.CountRecent(ctx, userID, challengeID, since)
	if err != nil {
		return err
	}

	if count >= int64(l.limit) {
		return ErrRateLimited
	}

	return nil
}
