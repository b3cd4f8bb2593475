package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resona-app/resona/streak"
)

func testSession(duration int, end time.Time) TrainingSession {
	return TrainingSession{
		ID:              "s1",
		StartTime:       end.Add(-time.Duration(duration) * time.Second),
		EndTime:         end,
		DurationSeconds: duration,
	}
}

func TestApplySessionMergesCounters(t *testing.T) {
	s := NewUserStats()
	today := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

	result := s.ApplySession(testSession(600, today), nil, today)

	assert.Equal(t, 1, s.TotalSessions)
	assert.Equal(t, 600, s.TotalTrainingSeconds)
	assert.Equal(t, 600.0, s.History["2024-03-10"])
	assert.Equal(t, 1, s.SessionCounts["2024-03-10"])
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, result.CurrentStreak)
	require.NotNil(t, s.LastTrainingDate)
	assert.Equal(t, today, *s.LastTrainingDate)
}

func TestApplySessionAccumulatesSameDay(t *testing.T) {
	s := NewUserStats()
	today := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	s.ApplySession(testSession(600, today), nil, today)
	s.ApplySession(testSession(300, today.Add(2*time.Hour)), nil, today)

	assert.Equal(t, 2, s.TotalSessions)
	assert.Equal(t, 900, s.TotalTrainingSeconds)
	assert.Equal(t, 900.0, s.History["2024-03-10"])
	assert.Equal(t, 2, s.SessionCounts["2024-03-10"])
	assert.Equal(t, 1, s.CurrentStreak, "same-day sessions extend the streak once")
}

func TestApplySessionZeroDurationStillExtendsStreak(t *testing.T) {
	// A very short session rounds to zero seconds but must still mark
	// the day as trained
	s := NewUserStats()
	today := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	result := s.ApplySession(testSession(0, today), nil, today)

	assert.Equal(t, 1, s.TotalSessions)
	assert.Contains(t, s.History, "2024-03-10")
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, s.CurrentStreak)
}

func TestApplySessionRecordsHealthTrend(t *testing.T) {
	s := NewUserStats()
	today := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	sess := testSession(600, today)
	sess.HealthLog = &VocalHealthLog{Effort: 7, Clarity: 4}
	s.ApplySession(sess, nil, today)

	require.Len(t, s.HealthTrends, 1)
	assert.Equal(t, 7, s.HealthTrends[0].Effort)
	assert.Equal(t, 600, s.HealthTrends[0].DurationSeconds)

	// No health log, no trend entry
	s.ApplySession(testSession(300, today), nil, today)
	assert.Len(t, s.HealthTrends, 1)
}

func TestApplySessionOnZeroValueStats(t *testing.T) {
	// A stats block decoded from JSON may carry nil maps
	var s UserStats
	today := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.NotPanics(t, func() {
		s.ApplySession(testSession(60, today), nil, today)
	})
	assert.Equal(t, 1, s.TotalSessions)
}

func TestSickDayLifecycle(t *testing.T) {
	s := NewUserStats()
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	s.MarkSickDay(day)
	assert.True(t, s.SickDays["2024-03-09"])

	s.ClearSickDay(day)
	assert.False(t, s.SickDays["2024-03-09"])
}

func TestSickDayBridgesStreakAcrossSessions(t *testing.T) {
	s := NewUserStats()
	loc := time.UTC

	day1 := time.Date(2024, 1, 1, 12, 0, 0, 0, loc)
	day3 := time.Date(2024, 1, 3, 12, 0, 0, 0, loc)

	s.ApplySession(testSession(600, day1), nil, day1)
	s.MarkSickDay(time.Date(2024, 1, 2, 0, 0, 0, 0, loc))
	result := s.ApplySession(testSession(600, day3), nil, day3)

	assert.Equal(t, streak.Result{CurrentStreak: 2, LongestStreak: 2}, result)
	assert.Equal(t, 2, s.CurrentStreak)
}

func TestTotalTrainingMinutes(t *testing.T) {
	s := NewUserStats()
	s.TotalTrainingSeconds = 659
	assert.Equal(t, 10, s.TotalTrainingMinutes(), "partial minutes truncate")
}
