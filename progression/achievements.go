package progression

import (
	"github.com/resona-app/resona/stats"
)

// Achievement is one entry of the static catalog. Conditions read the
// cumulative stats and the full session list; they must be pure.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Condition func(s *stats.UserStats, sessions []stats.TrainingSession) bool `json:"-"`
}

// Catalog returns the achievement list in its canonical evaluation
// order. The order is part of the contract: unlock notifications fire
// in this order when one session satisfies several at once.
func Catalog() []Achievement {
	return []Achievement{
		{
			ID:          "first_step",
			Title:       "First Step",
			Description: "Complete your first training session.",
			Condition: func(s *stats.UserStats, _ []stats.TrainingSession) bool {
				return s.TotalSessions >= 1
			},
		},
		{
			ID:          "consistency_week",
			Title:       "Consistent",
			Description: "Reach a 7-day streak.",
			Condition: func(s *stats.UserStats, _ []stats.TrainingSession) bool {
				return s.CurrentStreak >= 7
			},
		},
		{
			ID:          "marathoner",
			Title:       "Marathoner",
			Description: "Complete a session longer than 20 minutes.",
			Condition: func(_ *stats.UserStats, sessions []stats.TrainingSession) bool {
				for _, sess := range sessions {
					if sess.DurationSeconds >= 1200 {
						return true
					}
				}
				return false
			},
		},
		{
			ID:          "centurion",
			Title:       "Centurion",
			Description: "Reach 10 total hours of training.",
			Condition: func(s *stats.UserStats, _ []stats.TrainingSession) bool {
				return s.TotalTrainingSeconds >= 36000
			},
		},
		{
			ID:          "dedicated",
			Title:       "Dedicated",
			Description: "Complete 50 sessions.",
			Condition: func(s *stats.UserStats, _ []stats.TrainingSession) bool {
				return s.TotalSessions >= 50
			},
		},
	}
}

// CheckAchievements evaluates the catalog against the current stats,
// appends any new unlocks to the stats record, and returns the IDs
// unlocked by this check. Unlocks are monotonic: once an ID is in the
// unlocked set it stays there even if its condition later turns false.
func CheckAchievements(s *stats.UserStats, sessions []stats.TrainingSession) []string {
	unlocked := make(map[string]bool, len(s.UnlockedAchievements))
	for _, id := range s.UnlockedAchievements {
		unlocked[id] = true
	}

	var newUnlocks []string
	for _, ach := range Catalog() {
		if unlocked[ach.ID] {
			continue
		}
		if ach.Condition(s, sessions) {
			newUnlocks = append(newUnlocks, ach.ID)
			s.UnlockedAchievements = append(s.UnlockedAchievements, ach.ID)
		}
	}
	return newUnlocks
}
