// Package period converts instants into the daily and ISO-week keys that
// partition quest progress, streaks and leaderboards.
//
// Every function works on the UTC form of its input so the key recorded when
// a quest is generated always matches the key used when progress is written.
package period

import (
	"fmt"
	"time"
)

type Kind string

const (
	Daily   Kind = "daily"
	Weekly  Kind = "weekly"
	AllTime Kind = "all_time"
)

const AllTimeKey = "all-time"

const (
	dailyLayout  = "2006-01-02"
	weeklyPrefix = "weekly-"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Daily, Weekly, AllTime:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown period kind %q", s)
}

// DailyKey returns the UTC calendar date of t, e.g. 2024-05-01.
func DailyKey(t time.Time) string {
	return t.UTC().Format(dailyLayout)
}

// WeeklyKey returns the ISO-8601 week of t, e.g. weekly-2024-18.
func WeeklyKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%s%04d-%02d", weeklyPrefix, year, week)
}

func Key(kind Kind, t time.Time) string {
	switch kind {
	case Weekly:
		return WeeklyKey(t)
	case AllTime:
		return AllTimeKey
	default:
		return DailyKey(t)
	}
}

// Previous returns the key of the window immediately before the one holding t.
func Previous(kind Kind, t time.Time) string {
	switch kind {
	case Weekly:
		return WeeklyKey(t.UTC().AddDate(0, 0, -7))
	case AllTime:
		return AllTimeKey
	default:
		return DailyKey(t.UTC().AddDate(0, 0, -1))
	}
}

// Bounds returns the half-open [start, end) window holding t. Weekly windows
// start on Monday 00:00 UTC. The all-time window has zero bounds.
func Bounds(kind Kind, t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	switch kind {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case AllTime:
		return time.Time{}, time.Time{}
	default:
		return day, day.AddDate(0, 0, 1)
	}
}

// Parse recovers the kind and window start of a key produced by Key.
func Parse(key string) (Kind, time.Time, error) {
	if key == AllTimeKey {
		return AllTime, time.Time{}, nil
	}

	var year, week int
	if _, err := fmt.Sscanf(key, weeklyPrefix+"%d-%d", &year, &week); err == nil {
		if week < 1 || week > 53 {
			return "", time.Time{}, fmt.Errorf("invalid week in period key %q", key)
		}
		// January 4th always falls in ISO week 1.
		jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
		start, _ := Bounds(Weekly, jan4)
		start = start.AddDate(0, 0, (week-1)*7)
		if WeeklyKey(start) != key {
			return "", time.Time{}, fmt.Errorf("invalid week in period key %q", key)
		}
		return Weekly, start, nil
	}

	day, err := time.ParseInLocation(dailyLayout, key, time.UTC)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid period key %q: %w", key, err)
	}
	return Daily, day, nil
}

// Before reports whether key a names an earlier window than key b. Both keys
// must be of the same kind; the fixed-width formats order lexicographically.
func Before(a, b string) bool {
	return a < b
}
