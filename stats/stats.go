// Package stats holds the persisted user records: training sessions,
// recordings metadata, goals and the cumulative stats block, plus the
// merge logic that folds a completed session into them.
package stats

import (
	"time"

	"github.com/resona-app/resona/streak"
)

// PitchDataPoint is one sample of the per-session pitch time series.
// PitchHz <= 0 marks "no voiced pitch at this instant". Points are
// append-only while a session runs and frozen once it ends.
type PitchDataPoint struct {
	TimeOffsetMs int64   `json:"time"`
	PitchHz      float64 `json:"pitch"`
}

// VocalHealthLog is the user's self-assessment after a session
type VocalHealthLog struct {
	Effort  int    `json:"effort"`  // 1-10
	Clarity int    `json:"clarity"` // 1-5
	Notes   string `json:"notes,omitempty"`
}

// TrainingSession is the persisted record of one completed session
type TrainingSession struct {
	ID              string           `json:"id"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         time.Time        `json:"end_time"`
	DurationSeconds int              `json:"duration"`
	Notes           string           `json:"notes,omitempty"`
	RecordingID     string           `json:"recording_id,omitempty"`
	PitchData       []PitchDataPoint `json:"pitch_data,omitempty"`
	TargetPitch     float64          `json:"target_pitch,omitempty"`
	HealthLog       *VocalHealthLog  `json:"health_log,omitempty"`
}

// Recording is metadata for one stored audio blob. The blob itself is
// opaque binary held by the blob store under the same ID.
type Recording struct {
	ID              string           `json:"id"`
	Filename        string           `json:"filename"`
	Date            time.Time        `json:"date"`
	DurationSeconds int              `json:"duration"`
	SizeBytes       int64            `json:"size"`
	PitchData       []PitchDataPoint `json:"pitch_data,omitempty"`
	TargetPitch     float64          `json:"target_pitch,omitempty"`
}

// HealthTrend is one point of the persistent vocal-health series
type HealthTrend struct {
	Date            time.Time `json:"date"`
	Effort          int       `json:"effort"`
	DurationSeconds int       `json:"duration"`
}

// GoalType selects which cumulative stat a goal tracks
type GoalType string

const (
	GoalSessions GoalType = "sessions"
	GoalDuration GoalType = "duration" // whole minutes of training
	GoalStreak   GoalType = "streak"
)

// Goal is a user-defined target measured RELATIVE to a snapshot taken at
// creation time: progress is CurrentValue - StartValue, never the raw
// cumulative stat. "Do 10 more sessions from now", not "have 10 total".
type Goal struct {
	ID           string     `json:"id"`
	Type         GoalType   `json:"type"`
	Target       int        `json:"target"`
	StartValue   int        `json:"start_value"`
	CurrentValue int        `json:"current"`
	Label        string     `json:"label,omitempty"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Progress returns the relative progress toward the target
func (g Goal) Progress() int {
	return g.CurrentValue - g.StartValue
}

// UserStats is the cumulative stats block persisted between sessions
type UserStats struct {
	TotalSessions        int                `json:"total_sessions"`
	TotalTrainingSeconds int                `json:"total_training_time"`
	CurrentStreak        int                `json:"current_streak"`
	LastTrainingDate     *time.Time         `json:"last_training_date,omitempty"`
	History              map[string]float64 `json:"history"`        // date -> trained seconds
	SessionCounts        map[string]int     `json:"session_counts"` // date -> session count
	SickDays             map[string]bool    `json:"sick_days"`
	HealthTrends         []HealthTrend      `json:"health_trends"`
	UnlockedAchievements []string           `json:"unlocked_achievements"`
	GoalHistory          []Goal             `json:"goal_history"`
	XP                   int                `json:"xp"`
	Level                int                `json:"level"`
}

// NewUserStats returns the initial stats block for a fresh profile
func NewUserStats() *UserStats {
	return &UserStats{
		History:              make(map[string]float64),
		SessionCounts:        make(map[string]int),
		SickDays:             make(map[string]bool),
		HealthTrends:         []HealthTrend{},
		UnlockedAchievements: []string{},
		GoalHistory:          []Goal{},
		Level:                1,
	}
}

// ApplySession merges one completed session into the stats block:
// counters, the per-date history maps, health trends, and the streak
// recompute. Returns the streak result so callers can react to changes.
func (s *UserStats) ApplySession(session TrainingSession, schedule []time.Weekday, today time.Time) streak.Result {
	if s.History == nil {
		s.History = make(map[string]float64)
	}
	if s.SessionCounts == nil {
		s.SessionCounts = make(map[string]int)
	}
	if s.SickDays == nil {
		s.SickDays = make(map[string]bool)
	}

	dateKey := today.Format(streak.DateLayout)

	s.TotalSessions++
	s.TotalTrainingSeconds += session.DurationSeconds
	s.History[dateKey] += float64(session.DurationSeconds)
	s.SessionCounts[dateKey]++

	end := session.EndTime
	s.LastTrainingDate = &end

	if session.HealthLog != nil {
		s.HealthTrends = append(s.HealthTrends, HealthTrend{
			Date:            session.EndTime,
			Effort:          session.HealthLog.Effort,
			DurationSeconds: session.DurationSeconds,
		})
	}

	result := streak.Compute(s.History, s.SickDays, schedule, today)
	s.CurrentStreak = result.CurrentStreak
	return result
}

// Streaks recomputes both streak figures from the current history
func (s *UserStats) Streaks(schedule []time.Weekday, today time.Time) streak.Result {
	return streak.Compute(s.History, s.SickDays, schedule, today)
}

// MarkSickDay excuses a calendar day. Sick days have their own
// lifecycle, independent of the training history.
func (s *UserStats) MarkSickDay(day time.Time) {
	if s.SickDays == nil {
		s.SickDays = make(map[string]bool)
	}
	s.SickDays[day.Format(streak.DateLayout)] = true
}

// ClearSickDay removes the excused mark from a calendar day
func (s *UserStats) ClearSickDay(day time.Time) {
	delete(s.SickDays, day.Format(streak.DateLayout))
}

// TotalTrainingMinutes returns whole minutes of training, the unit
// duration goals are measured in
func (s *UserStats) TotalTrainingMinutes() int {
	return s.TotalTrainingSeconds / 60
}
