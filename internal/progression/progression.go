// Package progression implements the stat rules of the growth journey:
// intimacy awards, level classification and the derived percentages shown
// on the profile.
package progression

import "github.com/benvon/devotional/internal/models"

const (
	HabitIntimacyAward           = 2
	DevotionalIntimacyAward      = 5
	DevotionalComprehensionAward = 2

	growthCap       = 1000
	streakWeight    = 5
	percentCeiling  = 100
	finalTierTarget = 2000
)

// ApplyHabitCompletion credits a habit that moved from incomplete to complete.
// Un-completing a habit has no stat effect, so callers only invoke this on
// the completing transition.
func ApplyHabitCompletion(p models.UserProfile) models.UserProfile {
	out := p.Clone()
	out.Stats.Intimacy += HabitIntimacyAward
	return out
}

// ApplyDevotionalCompletion credits the daily devotional and stamps today.
// A second call for the same day returns the profile unchanged and false.
func ApplyDevotionalCompletion(p models.UserProfile, today models.Date) (models.UserProfile, bool) {
	if p.DevotionalDoneOn(today) {
		return p, false
	}
	out := p.Clone()
	out.Stats.Intimacy += DevotionalIntimacyAward
	out.Stats.Comprehension += DevotionalComprehensionAward
	out.LastDevotionalDate = &today
	return out, true
}

// Level is a named intimacy tier
type Level struct {
	Title string `json:"title"`
	Tier  int    `json:"tier"`
	Next  int    `json:"next"`
}

type tier struct {
	below int
	title string
}

var levels = []tier{
	{100, "Semente"},
	{300, "Raíz Fortalecida"},
	{600, "Broto de Fé"},
	{1000, "Árvore Frutífera"},
}

var compactLevels = []tier{
	{300, "Semente"},
	{600, "Raíz Fortalecida"},
}

// LevelFor classifies intimacy into the five-tier ladder
func LevelFor(intimacy int) Level {
	for i, l := range levels {
		if intimacy < l.below {
			return Level{Title: l.title, Tier: i + 1, Next: l.below}
		}
	}
	return Level{Title: "Guerreiro de Oração", Tier: len(levels) + 1, Next: finalTierTarget}
}

// CompactLevelFor classifies intimacy into the three-tier ladder used in the
// header badge. Its ordering agrees with LevelFor.
func CompactLevelFor(intimacy int) Level {
	for i, l := range compactLevels {
		if intimacy < l.below {
			return Level{Title: l.title, Tier: i + 1, Next: l.below}
		}
	}
	return Level{Title: "Árvore Frutífera", Tier: len(compactLevels) + 1, Next: growthCap}
}

// PointsToNext is how much intimacy is missing to reach the next tier
func PointsToNext(intimacy int) int {
	return max(0, LevelFor(intimacy).Next-intimacy)
}

// PercentToNext is intimacy relative to the next tier threshold, capped at 100
func PercentToNext(intimacy int) int {
	next := LevelFor(intimacy).Next
	return clampPercent(intimacy * percentCeiling / next)
}

// GrowthPercent maps a stat onto 0..100 with saturation at 1000
func GrowthPercent(x int) int {
	return clampPercent(min(x, growthCap) / 10)
}

// DisciplinePercent is min(100, streak*5)
func DisciplinePercent(streak int) int {
	return clampPercent(streak * streakWeight)
}

// WisdomPercent is min(100, comprehension)
func WisdomPercent(comprehension int) int {
	return clampPercent(comprehension)
}

func clampPercent(v int) int {
	return max(0, min(percentCeiling, v))
}

// Summary is the derived view of a profile's stats
type Summary struct {
	Level         Level `json:"level"`
	CompactLevel  Level `json:"compact_level"`
	PointsToNext  int   `json:"points_to_next"`
	PercentToNext int   `json:"percent_to_next"`
	Growth        int   `json:"growth_percent"`
	Discipline    int   `json:"discipline_percent"`
	Wisdom        int   `json:"wisdom_percent"`
}

// Summarize computes every derived figure for stats
func Summarize(s models.Stats) Summary {
	return Summary{
		Level:         LevelFor(s.Intimacy),
		CompactLevel:  CompactLevelFor(s.Intimacy),
		PointsToNext:  PointsToNext(s.Intimacy),
		PercentToNext: PercentToNext(s.Intimacy),
		Growth:        GrowthPercent(s.Intimacy),
		Discipline:    DisciplinePercent(s.Streak),
		Wisdom:        WisdomPercent(s.Comprehension),
	}
}
