// Package schedule contains the pure scheduling computations of the engine:
// clock-time resolution, interval overlap, deterministic slot keys, staffing
// summaries, and eligibility checks. Nothing in this package touches the
// database or has side effects, which keeps the algorithmic core trivially
// testable and safe to call from any layer.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date form used across the engine.
const DateLayout = "2006-01-02"

// ParseClock parses a local clock time in "HH:MM" form.
func ParseClock(s string) (hour, min int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	min, err = strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, min, nil
}

// ResolveWindow resolves a template's local time window onto a calendar date,
// returning concrete start and end timestamps in loc. An end time at or
// before the start time means the shift crosses midnight and ends on the
// following day (a 23:00-07:00 shift dated d starts on d and ends on d+1).
func ResolveWindow(date, startClock, endClock string, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	sh, sm, err := ParseClock(startClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := ParseClock(endClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, loc)
	end = time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// Overlap reports whether the half-open intervals [s1,e1) and [s2,e2)
// share any point in time. Adjacent intervals (e1 == s2) do not overlap.
func Overlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
