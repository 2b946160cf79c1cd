package gamification

import (
	"strings"

	"github.com/noah-isme/kodigo-go-api/internal/models"
)

// Reward is the XP/coin payout for completing a challenge.
type Reward struct {
	XP    int
	Coins int
}

// RewardPolicy computes the payout for a passed submission. The lifecycle is
// policy-agnostic; implementations are selected by configuration.
type RewardPolicy interface {
	Rewards(challenge models.Challenge, aiScore int) Reward
}

// ScoreWeightedPolicy scales the challenge base rewards by the AI score and the
// challenge difficulty: up to 50% bonus XP at score 100, and a difficulty
// multiplier from 1.0 (difficulty 1) to 1.8 (difficulty 5).
type ScoreWeightedPolicy struct{}

func (ScoreWeightedPolicy) Rewards(challenge models.Challenge, aiScore int) Reward {
	if aiScore < 0 {
		aiScore = 0
	}
	if aiScore > 100 {
		aiScore = 100
	}

	baseXP := challenge.BaseXPReward
	baseCoins := challenge.BonusCoins

	aiBonus := baseXP * aiScore / 200
	multiplier := 1 + float64(challenge.Difficulty-1)*0.2

	return Reward{
		XP:    int(float64(baseXP+aiBonus) * multiplier),
		Coins: int(float64(baseCoins) * multiplier),
	}
}

// FlatPolicy pays the challenge base rewards regardless of the AI score.
type FlatPolicy struct{}

func (FlatPolicy) Rewards(challenge models.Challenge, _ int) Reward {
	return Reward{XP: challenge.BaseXPReward, Coins: challenge.BonusCoins}
}

// PolicyFromName resolves a configured policy name, defaulting to the
// score-weighted rule.
func PolicyFromName(name string) RewardPolicy {
	if strings.EqualFold(strings.TrimSpace(name), "flat") {
		return FlatPolicy{}
	}
	return ScoreWeightedPolicy{}
}
