package gamification

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kodigo-go-api/internal/models"
)

func TestScoreWeightedPolicyScalesWithScoreAndDifficulty(t *testing.T) {
	challenge := models.Challenge{BaseXPReward: 100, BonusCoins: 10, Difficulty: 1}

	reward := ScoreWeightedPolicy{}.Rewards(challenge, 100)
	require.Equal(t, 150, reward.XP)
	require.Equal(t, 10, reward.Coins)

	reward = ScoreWeightedPolicy{}.Rewards(challenge, 0)
	require.Equal(t, 100, reward.XP)

	challenge.Difficulty = 5
	reward = ScoreWeightedPolicy{}.Rewards(challenge, 100)
	require.Equal(t, 270, reward.XP) // (100 + 50) * 1.8
	require.Equal(t, 18, reward.Coins)
}

func TestScoreWeightedPolicyClampsScore(t *testing.T) {
	challenge := models.Challenge{BaseXPReward: 100, BonusCoins: 10, Difficulty: 1}

	low := ScoreWeightedPolicy{}.Rewards(challenge, -20)
	high := ScoreWeightedPolicy{}.Rewards(challenge, 250)

	require.Equal(t, ScoreWeightedPolicy{}.Rewards(challenge, 0), low)
	require.Equal(t, ScoreWeightedPolicy{}.Rewards(challenge, 100), high)
}

func TestFlatPolicyIgnoresScore(t *testing.T) {
	challenge := models.Challenge{BaseXPReward: 120, BonusCoins: 15, Difficulty: 4}

	for _, score := range []int{0, 55, 100} {
		reward := FlatPolicy{}.Rewards(challenge, score)
		require.Equal(t, 120, reward.XP)
		require.Equal(t, 15, reward.Coins)
	}
}

func TestPolicyFromName(t *testing.T) {
	require.IsType(t, FlatPolicy{}, PolicyFromName("flat"))
	require.IsType(t, FlatPolicy{}, PolicyFromName(" FLAT "))
	require.IsType(t, ScoreWeightedPolicy{}, PolicyFromName("weighted"))
	require.IsType(t, ScoreWeightedPolicy{}, PolicyFromName(""))
}
