// Package progression implements the motivation layer on top of the
// stats records: relative goals, the achievement catalog, and the
// XP/level system.
package progression

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/resona-app/resona/stats"
)

var (
	// ErrGoalNotFound means no active goal carries the given ID
	ErrGoalNotFound = errors.New("goal not found")
	// ErrGoalNotCompleted means the goal cannot be claimed yet
	ErrGoalNotCompleted = errors.New("goal not completed")
)

// NewGoal creates a goal measured relative to the CURRENT stats: the
// start value is snapshotted now, so "10 more sessions" means ten
// sessions from this moment, regardless of lifetime totals.
func NewGoal(goalType stats.GoalType, target int, label string, s *stats.UserStats) stats.Goal {
	if target < 1 {
		target = 1
	}
	start := currentTotal(goalType, s)
	return stats.Goal{
		ID:           uuid.New().String(),
		Type:         goalType,
		Target:       target,
		StartValue:   start,
		CurrentValue: start,
		Label:        label,
	}
}

// RecomputeGoals refreshes every active goal against the current stats.
// Idempotent: running it twice against the same stats changes nothing,
// so callers can recompute after every session without bookkeeping.
func RecomputeGoals(goals []stats.Goal, s *stats.UserStats) []stats.Goal {
	updated := make([]stats.Goal, len(goals))
	for i, g := range goals {
		g.CurrentValue = currentTotal(g.Type, s)
		g.IsCompleted = g.CurrentValue-g.StartValue >= g.Target
		updated[i] = g
	}
	return updated
}

// ClaimGoal moves a completed goal out of the active list and into the
// stats goal history. The move is one-way: claimed goals never return
// to the active list. Returns the remaining active goals.
func ClaimGoal(goals []stats.Goal, s *stats.UserStats, goalID string, now time.Time) ([]stats.Goal, error) {
	idx := -1
	for i, g := range goals {
		if g.ID == goalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return goals, ErrGoalNotFound
	}
	if !goals[idx].IsCompleted {
		return goals, ErrGoalNotCompleted
	}

	claimed := goals[idx]
	claimed.CompletedAt = &now
	s.GoalHistory = append([]stats.Goal{claimed}, s.GoalHistory...)

	remaining := make([]stats.Goal, 0, len(goals)-1)
	remaining = append(remaining, goals[:idx]...)
	remaining = append(remaining, goals[idx+1:]...)
	return remaining, nil
}

// RemoveGoalHistoryEntry deletes one claimed goal from the history
func RemoveGoalHistoryEntry(s *stats.UserStats, goalID string) {
	filtered := s.GoalHistory[:0]
	for _, g := range s.GoalHistory {
		if g.ID != goalID {
			filtered = append(filtered, g)
		}
	}
	s.GoalHistory = filtered
}

// currentTotal reads the cumulative stat a goal type tracks
func currentTotal(goalType stats.GoalType, s *stats.UserStats) int {
	switch goalType {
	case stats.GoalSessions:
		return s.TotalSessions
	case stats.GoalDuration:
		return s.TotalTrainingMinutes()
	case stats.GoalStreak:
		return s.CurrentStreak
	default:
		return 0
	}
}
