package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Approximate lengths of the human-readable units.
// A month is 30 days and a year is 365 days.
var unitDurations = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// Matches "N units" and "N units ago", e.g. "3 days" or "2 hours ago".
var (
	lookbackRe     = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)
	relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)
)

// ErrZeroDuration is returned when a duration parses to zero.
var ErrZeroDuration = errors.New("zero duration is not useful")

// ParseLookbackDuration converts strings like "3 days" or "36h" into a time.Duration.
// Go duration syntax is tried first, then the human-readable "N units" form.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, ErrZeroDuration
		}
		return d, nil
	}

	matches := lookbackRe.FindStringSubmatch(strings.Join(strings.Fields(strings.ToLower(s)), " "))
	if matches == nil {
		return 0, fmt.Errorf("invalid lookback duration format: %s", s)
	}
	n, _ := strconv.Atoi(matches[1])
	d := time.Duration(n) * unitDurations[matches[2]]
	if d == 0 {
		return 0, ErrZeroDuration
	}
	return d, nil
}

// ParseRelativeTime converts strings like "2 hours ago" into a time before now.
// Calendar units move by calendar months and years rather than fixed lengths.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	matches := relativeTimeRe.FindStringSubmatch(strings.Join(strings.Fields(strings.ToLower(s)), " "))
	if matches == nil {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}
	n, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-n, 0, 0), nil
	case "month":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.Add(-time.Duration(n) * unitDurations[matches[2]]), nil
	}
}

// ParseInstant parses an absolute RFC3339 time or a relative "N units ago" time.
// An empty string yields now.
func ParseInstant(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("time must be RFC3339 or 'N units ago': %w", err)
	}
	return t, nil
}
