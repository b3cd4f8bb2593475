// Package streak computes training continuity from calendar history.
//
// The engine is pure: the same training map, sick-day map, schedule and
// reference date always produce the same result. "Today" is an explicit
// parameter, never read from the wall clock, so results are reproducible
// and testable.
package streak

import (
	"sort"
	"time"
)

// DateLayout is the canonical local-calendar key format for all date maps
const DateLayout = "2006-01-02"

// Safety bounds on calendar scans: roughly 13 years backward and 27
// years of total forward range. A corrupt far-past date key must not
// turn a recompute into an unbounded walk.
const (
	maxBackwardScan = 5000
	maxForwardScan  = 10000
)

// Result holds the two streak figures
type Result struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Compute calculates the current and longest streaks.
//
// trainingDates maps "YYYY-MM-DD" to accumulated trained seconds; a day
// is active when it has an entry at all. Presence is what counts: a
// recorded session extends the streak even when its rounded duration is
// zero seconds. sickDays marks excused days.
// schedule lists the weekdays the user intends to train; an empty
// schedule means every day is a training day (otherwise the streak
// could never break, which reads as broken tracking rather than mercy).
//
// Day classification:
//   - active:  has a training entry; extends the streak
//   - bridge:  excused or off-schedule; neither extends nor breaks
//   - break:   scheduled, not excused, no training; ends the streak
//
// Today is special-cased in the current-streak walk: an untrained today
// never breaks the streak, it just has not contributed yet.
func Compute(trainingDates map[string]float64, sickDays map[string]bool, schedule []time.Weekday, today time.Time) Result {
	day := dateOnly(today)

	isActive := func(d time.Time) bool {
		_, ok := trainingDates[d.Format(DateLayout)]
		return ok
	}
	isSick := func(d time.Time) bool {
		return sickDays[d.Format(DateLayout)]
	}
	isScheduled := func(d time.Time) bool {
		if len(schedule) == 0 {
			return true
		}
		for _, wd := range schedule {
			if d.Weekday() == wd {
				return true
			}
		}
		return false
	}

	// Current streak: walk backward from today
	current := 0
	if isActive(day) {
		current = 1
	}

	pointer := day.AddDate(0, 0, -1)
	for i := 0; i < maxBackwardScan; i++ {
		if isActive(pointer) {
			current++
		} else if !isSick(pointer) && isScheduled(pointer) {
			// scheduled, not excused, no training: the streak ends here
			break
		}
		pointer = pointer.AddDate(0, 0, -1)
	}

	// Longest streak: scan forward from the earliest recorded date
	first, ok := earliestDate(trainingDates, sickDays, day.Location())
	if !ok {
		return Result{CurrentStreak: current, LongestStreak: current}
	}

	longest := 0
	temp := 0
	scan := first
	for i := 0; i < maxForwardScan && !scan.After(day); i++ {
		switch {
		case isActive(scan):
			temp++
		case isSick(scan) || !isScheduled(scan):
			// bridge day
		default:
			if temp > longest {
				longest = temp
			}
			temp = 0
		}
		scan = scan.AddDate(0, 0, 1)
	}
	if temp > longest {
		longest = temp
	}

	// The longest streak can never be shorter than the current one
	if current > longest {
		longest = current
	}

	return Result{CurrentStreak: current, LongestStreak: longest}
}

// earliestDate returns the earliest parseable date key across both maps.
// Malformed keys are skipped so one corrupt record cannot take the whole
// recompute down.
func earliestDate(trainingDates map[string]float64, sickDays map[string]bool, loc *time.Location) (time.Time, bool) {
	keys := make([]string, 0, len(trainingDates)+len(sickDays))
	for k := range trainingDates {
		keys = append(keys, k)
	}
	for k := range sickDays {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if d, err := time.ParseInLocation(DateLayout, k, loc); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// dateOnly truncates a timestamp to local midnight
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
