package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func trained(dates ...string) map[string]float64 {
	m := make(map[string]float64, len(dates))
	for _, d := range dates {
		m[d] = 600
	}
	return m
}

func sick(dates ...string) map[string]bool {
	m := make(map[string]bool, len(dates))
	for _, d := range dates {
		m[d] = true
	}
	return m
}

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		name     string
		training map[string]float64
		sickDays map[string]bool
		schedule []time.Weekday
		today    string
		current  int
		longest  int
	}{
		{
			name:  "empty history",
			today: "2024-01-03",
		},
		{
			name:     "single day trained today",
			training: trained("2024-01-03"),
			today:    "2024-01-03",
			current:  1,
			longest:  1,
		},
		{
			name:     "sick day bridges a gap",
			training: trained("2024-01-01", "2024-01-03"),
			sickDays: sick("2024-01-02"),
			today:    "2024-01-03",
			current:  2,
			longest:  2,
		},
		{
			name:     "unexcused gap breaks the streak",
			training: trained("2024-01-01", "2024-01-03"),
			today:    "2024-01-03",
			current:  1,
			longest:  1,
		},
		{
			name:     "untrained today does not break",
			training: trained("2024-01-01", "2024-01-02"),
			today:    "2024-01-03",
			current:  2,
			longest:  2,
		},
		{
			name:     "consecutive run",
			training: trained("2024-01-01", "2024-01-02", "2024-01-03"),
			today:    "2024-01-03",
			current:  3,
			longest:  3,
		},
		{
			name: "off-schedule day bridges",
			// 2024-01-06 is a Saturday; weekday schedule skips it
			training: trained("2024-01-05", "2024-01-08"),
			schedule: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			today:    "2024-01-08",
			current:  2,
			longest:  2,
		},
		{
			name:     "old longer run is remembered",
			training: trained("2024-01-01", "2024-01-02", "2024-01-03", "2024-01-10"),
			today:    "2024-01-10",
			current:  1,
			longest:  3,
		},
		{
			name:     "training on a sick day still counts",
			training: trained("2024-01-01", "2024-01-02"),
			sickDays: sick("2024-01-02"),
			today:    "2024-01-02",
			current:  2,
			longest:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.training, tt.sickDays, tt.schedule, day(tt.today))
			assert.Equal(t, tt.current, got.CurrentStreak, "current streak")
			assert.Equal(t, tt.longest, got.LongestStreak, "longest streak")
		})
	}
}

func TestComputeEmptyScheduleMeansEveryDay(t *testing.T) {
	// With no schedule, the missed Tuesday breaks the streak even
	// though the user never declared Tuesday a training day
	training := trained("2024-01-01", "2024-01-03")
	got := Compute(training, nil, nil, day("2024-01-03"))
	assert.Equal(t, 1, got.CurrentStreak)
}

func TestComputeLongestNeverBelowCurrent(t *testing.T) {
	seeds := [][]string{
		{"2024-02-01"},
		{"2024-02-01", "2024-02-02"},
		{"2024-01-28", "2024-01-29", "2024-02-01", "2024-02-02"},
		{"2024-01-01", "2024-01-15", "2024-02-01", "2024-02-02"},
	}
	for _, dates := range seeds {
		got := Compute(trained(dates...), nil, nil, day("2024-02-02"))
		assert.GreaterOrEqual(t, got.LongestStreak, got.CurrentStreak, "dates=%v", dates)
	}
}

func TestComputeSkipsMalformedDateKeys(t *testing.T) {
	training := trained("2024-01-02", "2024-01-03")
	training["not-a-date"] = 600
	training[""] = 600

	got := Compute(training, nil, nil, day("2024-01-03"))
	assert.Equal(t, 2, got.CurrentStreak)
	assert.Equal(t, 2, got.LongestStreak)
}

func TestComputeEntryPresenceMakesDayActive(t *testing.T) {
	// A recorded day counts even when its accumulated duration rounds
	// to zero; presence of the entry is what extends the streak
	training := map[string]float64{
		"2024-01-02": 0,
		"2024-01-03": 600,
	}
	got := Compute(training, nil, nil, day("2024-01-03"))
	assert.Equal(t, 2, got.CurrentStreak, "zero-duration entry is still a trained day")
	assert.Equal(t, 2, got.LongestStreak)
}

func TestComputeTimeOfDayIrrelevant(t *testing.T) {
	training := trained("2024-01-02", "2024-01-03")
	late := time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)
	got := Compute(training, nil, nil, late)
	assert.Equal(t, 2, got.CurrentStreak)
}
