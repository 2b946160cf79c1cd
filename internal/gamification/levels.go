// Package gamification holds the pure progression rules: the XP curve,
// level-up coin bonuses, tier bands and challenge reward policies. Nothing in
// this package performs I/O.
package gamification

import "math"

// MaxLevel caps level progression. XP granted beyond the cap keeps accruing on
// the balance but can no longer be spent on levels.
const MaxLevel = 60

// XPRequired returns the XP needed to advance from the given level to the
// next. The curve is floor(100 * level^1.5), strictly increasing for level >= 1.
func XPRequired(level int) int {
	if level < 1 {
		return 0
	}
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// AddXP applies an XP grant to the current (xp, level) pair and returns the new
// balance, the new level and every level reached, in order. Level-ups stop at
// MaxLevel regardless of remaining balance.
func AddXP(currentXP, currentLevel, gained int) (newXP, newLevel int, levelsGained []int) {
	if gained < 0 {
		gained = 0
	}
	if currentLevel < 1 {
		currentLevel = 1
	}

	newXP = currentXP + gained
	newLevel = currentLevel

	for newLevel < MaxLevel {
		required := XPRequired(newLevel)
		if newXP < required {
			break
		}
		newXP -= required
		newLevel++
		levelsGained = append(levelsGained, newLevel)
	}

	return newXP, newLevel, levelsGained
}

// CoinsForLevelUp returns the coin bonus granted for reaching a level: a flat
// base, a bonus per tier band, and an extra milestone bonus on multiples of 10.
func CoinsForLevelUp(level int) int {
	baseCoins := 50
	tierBonus := (level / 10) * 25
	milestoneBonus := 0
	if level%10 == 0 {
		milestoneBonus = 100
	}
	return baseCoins + tierBonus + milestoneBonus
}
