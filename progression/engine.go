package progression

import (
	"time"

	"github.com/resona-app/resona/logging"
	"github.com/resona-app/resona/stats"
	"github.com/resona-app/resona/streak"
)

// Engine applies the full post-session progression pipeline in a fixed
// order: stats merge, XP award, goal recompute, achievement check.
type Engine struct {
	logger          logging.Logger
	disableLeveling bool
}

// NewEngine creates a progression engine
func NewEngine() *Engine {
	return &Engine{logger: logging.GetGlobalLogger()}
}

// SetDisableLeveling toggles XP gain. Disabling stops XP and level
// changes but leaves goals, streaks and achievements running.
func (e *Engine) SetDisableLeveling(disabled bool) {
	e.disableLeveling = disabled
}

// DisableLeveling reports whether XP gain is currently off
func (e *Engine) DisableLeveling() bool {
	return e.disableLeveling
}

// SessionOutcome summarizes everything one session changed
type SessionOutcome struct {
	Streak          streak.Result `json:"streak"`
	StreakExtended  bool          `json:"streak_extended"`
	XP              XPAward       `json:"xp"`
	NewAchievements []string      `json:"new_achievements,omitempty"`
	Goals           []stats.Goal  `json:"goals"`
}

// ApplySession folds one completed session into the stats record and
// runs the progression pipeline. sessions must already include the new
// session; goals is the active goal list, returned updated in the
// outcome.
func (e *Engine) ApplySession(s *stats.UserStats, session stats.TrainingSession, sessions []stats.TrainingSession, goals []stats.Goal, schedule []time.Weekday, today time.Time) SessionOutcome {
	prevStreak := s.CurrentStreak

	outcome := SessionOutcome{}
	outcome.Streak = s.ApplySession(session, schedule, today)
	outcome.StreakExtended = outcome.Streak.CurrentStreak > prevStreak

	outcome.XP = AwardSessionXP(s, session.DurationSeconds, today, e.disableLeveling)
	outcome.Goals = RecomputeGoals(goals, s)
	outcome.NewAchievements = CheckAchievements(s, sessions)

	e.logger.WithFields(logging.Fields{
		"session_id": session.ID,
		"duration_s": session.DurationSeconds,
		"streak":     outcome.Streak.CurrentStreak,
		"xp_gained":  outcome.XP.XPGained,
		"level":      s.Level,
		"unlocks":    len(outcome.NewAchievements),
	}).Info("session applied")

	if outcome.XP.LeveledUp {
		e.logger.WithFields(logging.Fields{"level": outcome.XP.NewLevel}).Info("level up")
	}

	return outcome
}
