package dto

import (
	"time"

	"github.com/noah-isme/kodigo-go-api/internal/gamification"
	"github.com/noah-isme/kodigo-go-api/internal/models"
)

// ProfileResponse is the progression view of a user.
type ProfileResponse struct {
	ID          uint       `json:"id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Level       int        `json:"level"`
	XP          int        `json:"xp"`
	XPRequired  int        `json:"xp_required"`
	XPProgress  int        `json:"xp_progress"`
	Coins       int        `json:"coins"`
	Tier        string     `json:"tier"`
	TierColor   string     `json:"tier_color"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
	Tier        string `json:"tier"`
	TierColor   string `json:"tier_color"`
}

// NewProfileResponse derives the tier and XP progress for a user.
func NewProfileResponse(user models.User) ProfileResponse {
	tier := gamification.TierFor(user.Level)
	required := gamification.XPRequired(user.Level)

	progress := 0
	if required > 0 {
		progress = user.XP * 100 / required
		if progress > 100 {
			progress = 100
		}
	}

	return ProfileResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
		Level:       user.Level,
		XP:          user.XP,
		XPRequired:  required,
		XPProgress:  progress,
		Coins:       user.Coins,
		Tier:        tier.Name,
		TierColor:   tier.Color,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

// NewLeaderboardEntry builds one ranked leaderboard row.
func NewLeaderboardEntry(rank int, user models.User) LeaderboardEntry {
	tier := gamification.TierFor(user.Level)
	return LeaderboardEntry{
		Rank:        rank,
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Level:       user.Level,
		XP:          user.XP,
		Tier:        tier.Name,
		TierColor:   tier.Color,
	}
}
