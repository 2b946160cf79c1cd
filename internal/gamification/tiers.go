package gamification

// Tier is a named band grouping contiguous level ranges.
type Tier struct {
	Name     string `json:"name"`
	MinLevel int    `json:"min_level"`
	MaxLevel int    `json:"max_level"`
	Color    string `json:"color"`
}

// Tiers partitions levels 0-60 into six contiguous bands.
var Tiers = []Tier{
	{Name: "Newbie", MinLevel: 0, MaxLevel: 10, Color: "#808080"},
	{Name: "Beginner", MinLevel: 11, MaxLevel: 20, Color: "#32CD32"},
	{Name: "Intermediate", MinLevel: 21, MaxLevel: 30, Color: "#1E90FF"},
	{Name: "Advanced", MinLevel: 31, MaxLevel: 40, Color: "#9932CC"},
	{Name: "Expert", MinLevel: 41, MaxLevel: 50, Color: "#FFD700"},
	{Name: "Master", MinLevel: 51, MaxLevel: 60, Color: "#FF4500"},
}

// TierFor maps a level to its band. Levels outside every band fall back to the
// top tier.
func TierFor(level int) Tier {
	for _, tier := range Tiers {
		if level >= tier.MinLevel && level <= tier.MaxLevel {
			return tier
		}
	}
	return Tiers[len(Tiers)-1]
}
